package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"tgosint/backend/internal/interactions"
)

// replyParams flattens labeled edges into UNWIND parameters
func replyParams(subject string, edges []interactions.LabeledEdge) map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, map[string]interface{}{
			"from_id": edge.FromID,
			"to_id":   edge.ToID,
			"from":    edge.From,
			"to":      edge.To,
			"count":   int64(edge.Count),
		})
	}
	return map[string]interface{}{
		"subject": subject,
		"edges":   rows,
	}
}

func mentionParams(subject string, mentions []interactions.MentionCount) map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(mentions))
	for _, m := range mentions {
		rows = append(rows, map[string]interface{}{
			"mention": m.Mention,
			"count":   int64(m.Count),
		})
	}
	return map[string]interface{}{
		"subject":  subject,
		"mentions": rows,
	}
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	return int(getInt64FromRecord(record, key))
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}
