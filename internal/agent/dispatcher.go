package agent

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/keshon/server-ghost/internal/ai"
)

// runDispatcher drains the action queue one item at a time. Serial execution
// is the point: a human does not type in three channels at once.
func (r *Runner) runDispatcher(ctx context.Context) error {
	log.Println("[DISPATCH] loop started")
	for {
		a, ok := r.queue.Dequeue(ctx)
		if !ok {
			return nil
		}
		log.Printf("[DISPATCH] action %s (queue depth %d)", a.Action, r.queue.Len())

		if a.Source != nil {
			r.handleReply(ctx, *a.Source)
			r.state.SetLastAction("REPLY")
			continue
		}

		switch a.Action {
		case ActionWait, "":
			continue
		case ActionRoam:
			r.executeRoam(ctx, a)
		case ActionSend, ActionRespond:
			r.executeSend(ctx, a)
		case ActionDirectSend:
			r.executeDirectSend(ctx, a)
		case ActionRead:
			r.executeRead(ctx, a)
		default:
			log.Printf("[DISPATCH] unknown action %q, skipping", a.Action)
			continue
		}
		r.state.SetLastAction(a.Action)
	}
}

// handleReply is the reactive path: decide, wait like a reader would, then
// generate and post a reply.
func (r *Runner) handleReply(ctx context.Context, ev Event) {
	if !ShouldRespond(ev, r.state.Interest(), r.rng.Float64) {
		log.Printf("[DISPATCH] not responding to %s", ev.ID)
		return
	}

	channelTexts := r.eventTexts(r.window.ForChannel(ev.ChannelID, 10))
	language := r.gateway.DetectLanguage(ctx, append([]string{ev.Content}, channelTexts...))

	if !r.cadence.Authorize(ev.ChannelID) {
		log.Printf("[CADENCE] skip reply in %s", ev.ChannelID)
		return
	}

	if !r.humanDelay(ctx, len(ev.Content)) {
		return
	}

	pc := r.buildPromptContext(ev, language)
	r.platform.Typing(ctx, ev.ChannelID, 5*time.Second)
	reply, err := r.gateway.Converse(ctx, ev.Content, pc)
	if err != nil {
		log.Printf("[DISPATCH] generation failed: %v", err)
		r.recorder.Log("ERROR", "generation failed: "+err.Error())
		return
	}
	if ai.IsGarbageResponse(reply) {
		log.Printf("[DISPATCH] discarding unusable reply")
		return
	}

	reply = r.gateway.RewriteSafe(ctx, reply, language)
	if ok, reason := r.filter.IsSafe(reply); !ok {
		log.Printf("[SAFETY] blocked reply: %s", reason)
		return
	}

	r.typePause(ctx, ev.ChannelID, len(reply))

	if err := r.platform.Reply(ctx, ev.ChannelID, ev.ID, reply); err != nil {
		log.Printf("[DISPATCH] reply failed: %v", err)
		return
	}
	log.Printf("[DISPATCH] replied to %s in %s", ev.AuthorName, ev.ChannelName)
	r.recorder.RecordOutbound(ev.ChannelID, ev.ChannelName, ev.GuildID, reply, "REPLY")
}

// executeSend posts a planned message to a channel. A missing message body
// falls back to a proactive generation, and a body in the wrong language
// gets regenerated rather than posted.
func (r *Runner) executeSend(ctx context.Context, a PendingAction) {
	if a.TargetChannel == "" {
		return
	}
	channel, ok := r.platform.ChannelInfo(a.TargetChannel)
	if !ok {
		return
	}
	if r.cfg.IsBlockedChannel(channel.ID) {
		log.Printf("[BLOCK] send suppressed in %s", channel.Name)
		return
	}
	if !r.cadence.Authorize(channel.ID) {
		log.Printf("[CADENCE] skip send in %s", channel.ID)
		return
	}

	guildName := r.guildName(channel.GuildID)
	language := r.gateway.DetectLanguage(ctx, r.eventTexts(r.window.ForChannel(channel.ID, 10)))

	content := a.Message
	if content == "" || languageMismatch(content, language) {
		var err error
		content, err = r.gateway.ProactiveMessage(ctx, ProactiveContext{
			ServerName: guildName,
			Language:   language,
		})
		if err != nil {
			log.Printf("[DISPATCH] proactive generation failed: %v", err)
			return
		}
	}
	if ai.IsGarbageResponse(content) {
		log.Printf("[DISPATCH] discarding unusable message")
		return
	}

	content = r.gateway.RewriteSafe(ctx, content, language)
	if ok, reason := r.filter.IsSafe(content); !ok {
		log.Printf("[SAFETY] blocked send: %s", reason)
		return
	}

	r.typePause(ctx, channel.ID, len(content))

	if err := r.platform.SendMessage(ctx, channel.ID, content); err != nil {
		log.Printf("[DISPATCH] send failed: %v", err)
		return
	}
	log.Printf("[DISPATCH] sent message in %s", channel.Name)
	r.recorder.RecordOutbound(channel.ID, channel.Name, channel.GuildID, content, "SEND")
}

// executeDirectSend opens a DM with the planned user.
func (r *Runner) executeDirectSend(ctx context.Context, a PendingAction) {
	if a.TargetUser == "" {
		return
	}

	content := a.Message
	if content == "" {
		var err error
		content, err = r.gateway.ProactiveMessage(ctx, ProactiveContext{
			ServerName: "DM",
			Situation:  "direct message",
			Language:   r.cfg.DefaultLanguage,
		})
		if err != nil {
			log.Printf("[DISPATCH] DM generation failed: %v", err)
			return
		}
	}

	if ok, reason := r.filter.IsSafe(content); !ok {
		log.Printf("[SAFETY] blocked DM: %s", reason)
		return
	}

	if !r.pause(ctx, typingTime(len(content), r.rng.Float64)) {
		return
	}

	if err := r.platform.SendDirect(ctx, a.TargetUser, content); err != nil {
		log.Printf("[DISPATCH] DM failed: %v", err)
		return
	}
	r.recorder.RecordOutbound("DM", "DM", "", content, "DM_SEND")
	r.recorder.Log("SEND_DM", "DM sent to "+a.TargetUser)
}

// executeRoam moves focus to the planned guild and channel.
func (r *Runner) executeRoam(ctx context.Context, a PendingAction) {
	if a.TargetServer == "" {
		return
	}
	channelID := a.TargetChannel
	if channelID == "" || channelID == "0" {
		channels := r.platform.EligibleChannels(a.TargetServer)
		if len(channels) == 0 {
			return
		}
		channelID = channels[0].ID
	}

	r.state.SetFocus(a.TargetServer, channelID, roamFocusLevel, r.now())
	log.Printf("[ROAMING] focus now %s #%s", r.guildName(a.TargetServer), channelID)
	r.recorder.Log("ROAMING", "roamed to channel "+channelID)

	history, err := r.platform.RecentHistory(ctx, channelID, 5)
	if err != nil {
		return
	}
	for _, ev := range history {
		r.window.Add(ev)
	}
}

// executeRead pulls channel history into the window without posting.
func (r *Runner) executeRead(ctx context.Context, a PendingAction) {
	if a.TargetChannel == "" {
		return
	}
	history, err := r.platform.RecentHistory(ctx, a.TargetChannel, 20)
	if err != nil {
		log.Printf("[DISPATCH] read failed: %v", err)
		return
	}
	for _, ev := range history {
		r.window.Add(ev)
	}
	r.recorder.Log("READ_MESSAGES", "read channel "+a.TargetChannel)
}

// buildPromptContext assembles the channel situation for reply generation:
// the last few messages, any links seen, and the quoted message itself.
func (r *Runner) buildPromptContext(ev Event, language string) PromptContext {
	recent := r.window.ForChannel(ev.ChannelID, 8)

	var lines []string
	var links []string
	seen := make(map[string]bool)
	for _, m := range recent {
		lines = append(lines, m.AuthorName+": "+truncateString(m.Content, 160))
		for _, l := range urlPattern.FindAllString(m.Content, -1) {
			if !seen[l] {
				seen[l] = true
				links = append(links, l)
			}
		}
	}
	for _, l := range urlPattern.FindAllString(ev.Content, -1) {
		if !seen[l] {
			seen[l] = true
			links = append(links, l)
		}
	}
	if len(links) > 5 {
		links = links[:5]
	}

	serverName := ev.GuildName
	channelName := ev.ChannelName
	if ev.IsDM {
		serverName = "DM"
		channelName = "DM"
	}

	return PromptContext{
		ServerName:     serverName,
		ChannelName:    channelName,
		Language:       language,
		QuotedMessage:  ev.Content,
		ChannelContext: strings.Join(lines, "\n"),
		Links:          links,
	}
}

// humanDelay waits the time a person would take to notice and read the
// message before starting to act on it. Capped so a wall of text does not
// stall the queue.
func (r *Runner) humanDelay(ctx context.Context, contentLen int) bool {
	base := 0.5 + r.rng.Float64()*1.5
	reading := float64(contentLen) / (15 + r.rng.Float64()*10)
	total := base + reading
	if total > 10 {
		total = 10
	}
	return r.pause(ctx, time.Duration(total*float64(time.Second)))
}

// typePause shows the typing indicator for about as long as typing the
// message would take, then waits it out.
func (r *Runner) typePause(ctx context.Context, channelID string, contentLen int) {
	d := typingTime(contentLen, r.rng.Float64)
	if d == 0 {
		return
	}
	r.platform.Typing(ctx, channelID, d)
	r.pause(ctx, d)
}

// typingTime estimates typing duration at 5-9 chars per second. Anything
// under half a second is not worth simulating.
func typingTime(contentLen int, roll func() float64) time.Duration {
	secs := float64(contentLen) / (5 + roll()*4)
	if secs <= 0.5 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func (r *Runner) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (r *Runner) eventTexts(events []Event) []string {
	texts := make([]string, 0, len(events))
	for _, ev := range events {
		texts = append(texts, ev.Content)
	}
	return texts
}

func (r *Runner) guildName(guildID string) string {
	for _, g := range r.platform.Guilds() {
		if g.ID == guildID {
			return g.Name
		}
	}
	return ""
}

var italianMarkers = []string{"à", "è", "é", "ì", "ò", "ù"}

var englishStopwords = []string{" the ", " and ", " but ", " you ", " i ", " ok "}

// languageMismatch reports whether a message body visibly disagrees with
// the channel language and should be regenerated.
func languageMismatch(content, language string) bool {
	lower := strings.ToLower(content)
	switch language {
	case "english":
		for _, m := range italianMarkers {
			if strings.Contains(content, m) {
				return true
			}
		}
		return strings.Contains(lower, " che ")
	case "italian":
		for _, w := range englishStopwords {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}
