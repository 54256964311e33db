package interactions

import (
	"fmt"
	"regexp"

	"tgosint/backend/internal/archive"
	"tgosint/backend/internal/constants"
)

// mentionPattern matches "@" followed by at least MinMentionLength word characters
var mentionPattern = regexp.MustCompile(fmt.Sprintf(`@[\p{L}\p{N}_]{%d,}`, constants.MinMentionLength))

// MentionCount is one ranked mention
type MentionCount struct {
	Mention string `json:"mention"`
	Count   int    `json:"count"`
}

// MentionTally holds case-sensitive counts of @handles found in message text
type MentionTally struct {
	t *tally[string]
}

// ExtractMentions scans the text of every message for @handles.
// Messages without text contribute nothing.
func ExtractMentions(msgs []archive.Message) *MentionTally {
	t := newTally[string]()
	for _, msg := range msgs {
		if msg.Text == nil {
			continue
		}
		for _, mention := range mentionPattern.FindAllString(*msg.Text, -1) {
			t.add(mention)
		}
	}
	return &MentionTally{t: t}
}

// Ranked returns all mentions by descending count, ties in first-seen order
func (m *MentionTally) Ranked() []MentionCount {
	keys := m.t.ranked()
	out := make([]MentionCount, 0, len(keys))
	for _, key := range keys {
		out = append(out, MentionCount{Mention: key, Count: m.t.counts[key]})
	}
	return out
}

// Counts returns the raw, unranked tally
func (m *MentionTally) Counts() map[string]int {
	out := make(map[string]int, len(m.t.counts))
	for k, v := range m.t.counts {
		out[k] = v
	}
	return out
}

// Total is the number of matched mentions across all messages
func (m *MentionTally) Total() int {
	return m.t.total()
}

// Len is the number of distinct mentions
func (m *MentionTally) Len() int {
	return len(m.t.order)
}
