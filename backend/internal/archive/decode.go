package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layouts accepted for message dates, tried in order. Offset-less values are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// Keys that may carry the reply target, in order of preference.
var replyKeys = []string{"reply_to_message_id", "reply_to_msg_id"}

type rawRecord map[string]json.RawMessage

// decodeRecord converts one archive element into a Message.
// Only a missing or non-integer id rejects the record; every other field degrades to nil.
func decodeRecord(raw json.RawMessage, chat string) (Message, error) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Message{}, fmt.Errorf("record is not an object: %w", err)
	}
	if rec == nil {
		return Message{}, fmt.Errorf("record is null")
	}

	id, ok := decodeInt(rec["id"])
	if !ok {
		return Message{}, fmt.Errorf("record has no integer id")
	}

	return Message{
		ID:        id,
		Date:      decodeDate(rec["date"]),
		Text:      decodeString(rec["text"]),
		FromID:    decodeAuthor(rec["from_id"]),
		ReplyToID: decodeReplyTarget(rec),
		Chat:      chat,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeInt(raw json.RawMessage) (int64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func decodeIntPtr(raw json.RawMessage) *int64 {
	n, ok := decodeInt(raw)
	if !ok {
		return nil
	}
	return &n
}

func decodeString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func decodeDate(raw json.RawMessage) *time.Time {
	s := decodeString(raw)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

// decodeAuthor reads {"user_id": N}. Peers without user_id (channels, chats) have no author.
func decodeAuthor(raw json.RawMessage) *int64 {
	if isNull(raw) {
		return nil
	}
	var peer rawRecord
	if err := json.Unmarshal(raw, &peer); err != nil || peer == nil {
		return nil
	}
	return decodeIntPtr(peer["user_id"])
}

func decodeReplyTarget(rec rawRecord) *int64 {
	for _, key := range replyKeys {
		if target := decodeIntPtr(rec[key]); target != nil {
			return target
		}
	}

	// Raw MTProto dumps nest the target under reply_to
	nested, ok := rec["reply_to"]
	if !ok || isNull(nested) {
		return nil
	}
	var header rawRecord
	if err := json.Unmarshal(nested, &header); err != nil || header == nil {
		return nil
	}
	return decodeIntPtr(header["reply_to_msg_id"])
}
