package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tgosint/backend/internal/interactions"
	apperrors "tgosint/backend/pkg/errors"
)

func TestReplyParams(t *testing.T) {
	params := replyParams("ivan", []interactions.LabeledEdge{
		{FromID: 2, ToID: 1, From: "@maria", To: "Ivan (1)", Count: 3},
	})

	assert.Equal(t, "ivan", params["subject"])
	assert.Equal(t, []map[string]interface{}{
		{"from_id": int64(2), "to_id": int64(1), "from": "@maria", "to": "Ivan (1)", "count": int64(3)},
	}, params["edges"])
}

func TestMentionParams(t *testing.T) {
	params := mentionParams("ivan", []interactions.MentionCount{{Mention: "@bob_handle", Count: 2}})

	assert.Equal(t, "ivan", params["subject"])
	assert.Equal(t, []map[string]interface{}{{"mention": "@bob_handle", "count": int64(2)}}, params["mentions"])
}

func TestReplyStatements_ClearBeforeWrite(t *testing.T) {
	stmts := replyStatements("ivan", []interactions.LabeledEdge{{FromID: 2, ToID: 1, Count: 1}})

	require.Len(t, stmts, 2)
	assert.Equal(t, replyClearQuery, stmts[0].query)
	assert.Equal(t, map[string]interface{}{"subject": "ivan"}, stmts[0].params)
	assert.Equal(t, replyExportQuery, stmts[1].query)

	// An empty result still clears what a previous run exported
	stmts = replyStatements("ivan", nil)
	require.Len(t, stmts, 1)
	assert.Equal(t, replyClearQuery, stmts[0].query)
}

func TestMentionStatements_ClearBeforeWrite(t *testing.T) {
	stmts := mentionStatements("ivan", []interactions.MentionCount{{Mention: "@bob_handle", Count: 1}})

	require.Len(t, stmts, 2)
	assert.Equal(t, mentionClearQuery, stmts[0].query)
	assert.Equal(t, mentionExportQuery, stmts[1].query)

	stmts = mentionStatements("ivan", nil)
	require.Len(t, stmts, 1)
	assert.Equal(t, mentionClearQuery, stmts[0].query)
}

func TestGetInt64FromRecord(t *testing.T) {
	record := &neo4j.Record{Keys: []string{"a", "b", "c"}, Values: []any{int64(7), "x", nil}}

	assert.Equal(t, int64(7), getInt64FromRecord(record, "a"))
	assert.Zero(t, getInt64FromRecord(record, "b"))
	assert.Zero(t, getInt64FromRecord(record, "c"))
	assert.Zero(t, getInt64FromRecord(record, "missing"))
	assert.Equal(t, "x", getStringFromRecord(record, "b"))
}

func TestConnect_BadURI(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-scheme://localhost", "neo4j", "password")

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))
}

// TestExporter_RoundTrip requires a running Neo4j instance
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables
func TestExporter_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx := context.Background()
	driver, err := Connect(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
	require.NoError(t, err)

	exporter := NewExporter(driver, zaptest.NewLogger(t))
	defer exporter.Close(ctx)
	require.NoError(t, exporter.EnsureSchema(ctx))

	subject := "test-subject-" + time.Now().Format("20060102150405")
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH ()-[r:REPLIED_TO {subject: $subject}]->() DELETE r", map[string]interface{}{"subject": subject})
		_, _ = session.Run(ctx, "MATCH (s:Subject {name: $subject}) DETACH DELETE s", map[string]interface{}{"subject": subject})
	}()

	edges := []interactions.LabeledEdge{{FromID: 900002, ToID: 900001, From: "@maria", To: "Ivan (900001)", Count: 2}}
	require.NoError(t, exporter.ExportReplies(ctx, subject, edges))
	// Exporting again overwrites rather than accumulates
	require.NoError(t, exporter.ExportReplies(ctx, subject, edges))

	got, err := exporter.ReplyCounts(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, edges, got)

	// An edge missing from the next run is removed
	next := []interactions.LabeledEdge{{FromID: 900003, ToID: 900001, From: "@petr", To: "Ivan (900001)", Count: 1}}
	require.NoError(t, exporter.ExportReplies(ctx, subject, next))
	got, err = exporter.ReplyCounts(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	mentions := []interactions.MentionCount{{Mention: "@bob_handle", Count: 4}, {Mention: "@carol_x", Count: 1}}
	require.NoError(t, exporter.ExportMentions(ctx, subject, mentions))
	gotMentions, err := exporter.MentionCounts(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, mentions, gotMentions)

	require.NoError(t, exporter.ExportMentions(ctx, subject, mentions[:1]))
	gotMentions, err = exporter.MentionCounts(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, mentions[:1], gotMentions)

	require.NoError(t, exporter.ExportMentions(ctx, subject, nil))
	gotMentions, err = exporter.MentionCounts(ctx, subject)
	require.NoError(t, err)
	assert.Empty(t, gotMentions)
}
