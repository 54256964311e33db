package archive

import (
	"strconv"
	"strings"
	"time"
)

// Message is one record from a per-chat archive file.
// Pointer fields are nil when the source value was null, missing or of the wrong type.
type Message struct {
	ID        int64      `json:"id"`
	Date      *time.Time `json:"date,omitempty"`
	Text      *string    `json:"text,omitempty"`
	FromID    *int64     `json:"from_id,omitempty"`     // Nil for channels and service messages
	ReplyToID *int64     `json:"reply_to_id,omitempty"` // Message id this one replies to
	Chat      string     `json:"chat"`                  // Archive the record was read from
}

// HasAuthor reports whether the message was sent by a user
func (m Message) HasAuthor() bool {
	return m.FromID != nil
}

// IsReply reports whether the message carries a reply back-reference
func (m Message) IsReply() bool {
	return m.ReplyToID != nil
}

// Archive is the combined message set of one subject folder
type Archive struct {
	Folder         string    `json:"folder"`
	Files          []string  `json:"files"`
	Messages       []Message `json:"messages"`
	SkippedFiles   int       `json:"skipped_files"`
	SkippedRecords int       `json:"skipped_records"`
}

// Profile identifies the subject whose messages were collected
type Profile struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayLabel renders the subject as "First Last (username)", falling back to the
// numeric id wherever a name or username is missing.
func (p *Profile) DisplayLabel() string {
	id := strconv.FormatInt(p.UserID, 10)
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	username := strings.TrimPrefix(p.Username, "@")

	switch {
	case name != "" && username != "":
		return name + " (" + username + ")"
	case name != "":
		return name + " (" + id + ")"
	case username != "":
		return username + " (" + id + ")"
	default:
		return id
	}
}
