package store

import "time"

// Document is a retrieved knowledge segment handed to generation.
type Document struct {
	ID         string                 `json:"id"`
	DocumentID string                 `json:"document_id"`
	Content    string                 `json:"content"`
	Score      float32                `json:"score"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Session is the ephemeral state of one conversation.
// History holds "Q: "/"A: " tagged lines in order.
type Session struct {
	ID           string         `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
	History      []string       `json:"history"`
	Counters     map[string]int `json:"counters"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		History:      []string{},
		Counters:     map[string]int{},
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]string(nil), s.History...)
	c.Counters = make(map[string]int, len(s.Counters))
	for k, v := range s.Counters {
		c.Counters[k] = v
	}
	return &c
}
