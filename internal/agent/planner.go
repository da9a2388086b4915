package agent

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	planInterestFloor   = 0.2
	planConfidenceFloor = 0.6
	authPause           = 5 * time.Minute
)

// runPlanner is the thinking loop. Every tick it handles sleep state, decays
// interest, maybe rotates presence, and when interest is high enough asks
// the model for the next move.
func (r *Runner) runPlanner(ctx context.Context) error {
	log.Println("[PLANNER] loop started")
	for {
		tick := r.tickMin + time.Duration(r.rng.Float64()*float64(r.tickMax-r.tickMin))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(tick):
		}

		now := r.now()
		if sleeping, until := r.state.Sleeping(); sleeping {
			if now.Before(until) {
				if r.rng.Float64() >= 0.05 {
					continue
				}
				log.Println("[SLEEP] brief wake check")
			} else {
				r.state.WakeUp()
				log.Println("[SLEEP] waking up")
				r.presence.Maybe(false)
			}
		} else if h := now.Hour(); h >= 1 && h <= 5 && r.rng.Float64() < 0.1 {
			dur := time.Duration((4 + r.rng.Float64()*4) * float64(time.Hour))
			r.state.BeginSleep(now.Add(dur))
			log.Printf("[SLEEP] going quiet for %.1fh", dur.Hours())
			if err := r.platform.SetPresence(StatusIdle, Activity{}); err != nil {
				log.Printf("[SLEEP] presence update failed: %v", err)
			}
			continue
		}

		if r.state.Decay(now) {
			r.switchFocus(ctx)
		}
		asleep, _ := r.state.Sleeping()
		r.presence.Maybe(asleep)

		snap := r.state.Snapshot()
		log.Printf("[PLANNER] interest %.2f, focus %s", snap.Interest, snap.FocusChannelID)

		recent := r.window.ForFocus(snap.FocusChannelID, 10)
		texts := make([]string, 0, len(recent))
		for _, ev := range recent {
			texts = append(texts, ev.Content)
		}
		language := r.gateway.DetectLanguage(ctx, texts)

		if snap.Interest <= planInterestFloor {
			continue
		}

		plan, err := r.gateway.PlanNextAction(ctx, PlanContext{
			FocusChannel:   snap.FocusChannelID,
			Interest:       snap.Interest,
			Mood:           snap.Mood,
			Personality:    snap.Personality,
			Language:       language,
			RecentMessages: recent,
		})
		if err != nil {
			log.Printf("[PLANNER] planning failed: %v", err)
			if errors.Is(err, ErrAuth) {
				log.Printf("[PLANNER] auth failure, pausing for %s", authPause)
				r.recorder.Log("ERROR", "auth failure, planner paused")
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(authPause):
				}
			}
			continue
		}

		log.Printf("[PLANNER] plan: %s (%.2f) %s", plan.Action, plan.Confidence, plan.Reason)
		if plan.Confidence > planConfidenceFloor {
			r.queue.Enqueue(plan)
		}
	}
}
