package remote

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry as served by the remote.
type Entry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	Keywords  []string  `json:"keywords,omitempty"`
}

// Tag as served by the remote.
type Tag struct {
	ID            int64  `json:"id"`
	EntryID       int64  `json:"entry_id"`
	SentenceIndex int    `json:"sentence_index"`
	Tag           string `json:"tag"`
}

// Keyword as served by the remote.
type Keyword struct {
	ID      int64  `json:"id"`
	EntryID int64  `json:"entry_id"`
	Keyword string `json:"keyword"`
}

type CreateEntryRequest struct {
	Content   string     `json:"content"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
}

type CreateEntryResponse struct {
	EntryID int64  `json:"entry_id"`
	Message string `json:"message,omitempty"`
}

type UpdateKeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

type CreateTagRequest struct {
	EntryID       int64  `json:"entry_id"`
	SentenceIndex int    `json:"sentence_index"`
	Tag           string `json:"tag"`
}

type CreateTagResponse struct {
	TagID   int64  `json:"tag_id"`
	Message string `json:"message,omitempty"`
}

// Ack is the generic acknowledgement body.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// Timestamp accepts the date formats remotes commonly emit and always writes RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses s with the lenient remote layouts. Values without a
// zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(*s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
