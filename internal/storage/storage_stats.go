package storage

import (
	"sort"
	"time"
)

// Stats is an aggregate view of everything recorded so far.
type Stats struct {
	TotalUsers      int `json:"total_users"`
	SuspiciousUsers int `json:"suspicious_users"`
	TotalSuspicions int `json:"total_suspicions"`
	TotalMessages   int `json:"total_messages"`
	DMMessages      int `json:"dm_messages"`
	AgentResponses  int `json:"agent_responses"`
}

func (s *Storage) GetStats() (Stats, error) {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	st.TotalUsers = len(rec.Users)
	for _, u := range rec.Users {
		if u.IsSuspicious {
			st.SuspiciousUsers++
		}
		st.TotalSuspicions += u.SuspicionCount
	}
	st.TotalMessages = len(rec.Messages)
	for _, m := range rec.Messages {
		if m.IsDM {
			st.DMMessages++
		}
	}
	st.AgentResponses = len(rec.Responses)
	return st, nil
}

// UserActivity pairs a user with how many messages they sent.
type UserActivity struct {
	Username   string `json:"username"`
	ServerName string `json:"server_name"`
	Messages   int    `json:"messages"`
}

// TopUsers ranks users by observed message count, most active first.
func (s *Storage) TopUsers(n int) ([]UserActivity, error) {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range rec.Messages {
		counts[m.AuthorID]++
	}

	out := make([]UserActivity, 0, len(counts))
	for id, c := range counts {
		u := rec.Users[id]
		name := u.Username
		if name == "" {
			name = id
		}
		out = append(out, UserActivity{Username: name, ServerName: u.ServerName, Messages: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].Username < out[j].Username
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ActivitySince counts messages and responses recorded after the cutoff.
func (s *Storage) ActivitySince(cutoff time.Time) (messages, responses int, err error) {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return 0, 0, err
	}
	for _, m := range rec.Messages {
		if m.Datetime.After(cutoff) {
			messages++
		}
	}
	for _, r := range rec.Responses {
		if r.Datetime.After(cutoff) {
			responses++
		}
	}
	return messages, responses, nil
}

// RecentSuspicions returns up to n latest suspicion records, newest first.
func (s *Storage) RecentSuspicions(n int) ([]SuspicionRecord, error) {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return nil, err
	}
	sus := rec.Suspicions
	if n > 0 && len(sus) > n {
		sus = sus[len(sus)-n:]
	}
	out := make([]SuspicionRecord, 0, len(sus))
	for i := len(sus) - 1; i >= 0; i-- {
		out = append(out, sus[i])
	}
	return out, nil
}

// RecentLogs returns up to n latest log records, newest first.
func (s *Storage) RecentLogs(n int) ([]LogRecord, error) {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return nil, err
	}
	logs := rec.Logs
	if n > 0 && len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	out := make([]LogRecord, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i])
	}
	return out, nil
}
