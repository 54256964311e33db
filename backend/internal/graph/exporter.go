package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"tgosint/backend/internal/interactions"
	apperrors "tgosint/backend/pkg/errors"
)

const replyClearQuery = `
	MATCH (:TelegramUser)-[r:REPLIED_TO {subject: $subject}]->(:TelegramUser)
	DELETE r
`

const mentionClearQuery = `
	MATCH (:Subject {name: $subject})-[m:MENTIONED]->(:Handle)
	DELETE m
`

const replyExportQuery = `
	UNWIND $edges AS edge
	MERGE (a:TelegramUser {id: edge.from_id})
	SET a.label = edge.from
	MERGE (b:TelegramUser {id: edge.to_id})
	SET b.label = edge.to
	MERGE (a)-[r:REPLIED_TO {subject: $subject}]->(b)
	SET r.count = edge.count,
	    r.updated_at = datetime()
`

const mentionExportQuery = `
	MERGE (s:Subject {name: $subject})
	WITH s
	UNWIND $mentions AS mention
	MERGE (h:Handle {name: mention.mention})
	MERGE (s)-[m:MENTIONED]->(h)
	SET m.count = mention.count,
	    m.updated_at = datetime()
`

const replyCountsQuery = `
	MATCH (a:TelegramUser)-[r:REPLIED_TO {subject: $subject}]->(b:TelegramUser)
	RETURN a.id AS from_id, a.label AS from, b.id AS to_id, b.label AS to, r.count AS count
	ORDER BY count DESC, from_id, to_id
`

const mentionCountsQuery = `
	MATCH (:Subject {name: $subject})-[m:MENTIONED]->(h:Handle)
	RETURN h.name AS mention, m.count AS count
	ORDER BY count DESC, mention
`

var schemaStatements = []string{
	"CREATE CONSTRAINT telegram_user_id_unique IF NOT EXISTS FOR (u:TelegramUser) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT subject_name_unique IF NOT EXISTS FOR (s:Subject) REQUIRE s.name IS UNIQUE",
	"CREATE CONSTRAINT handle_name_unique IF NOT EXISTS FOR (h:Handle) REQUIRE h.name IS UNIQUE",
	"CREATE INDEX replied_to_subject IF NOT EXISTS FOR ()-[r:REPLIED_TO]-() ON (r.subject)",
}

// statement is one query of a write transaction
type statement struct {
	query  string
	params map[string]interface{}
}

// Exporter writes interaction graphs to Neo4j. Each export replaces the subject's previous
// edges, so edges that disappeared from the archive disappear from the graph too.
type Exporter struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewExporter creates a new graph exporter
func NewExporter(driver neo4j.DriverWithContext, logger *zap.Logger) *Exporter {
	return &Exporter{
		driver: driver,
		logger: logger,
	}
}

// Connect opens a driver and verifies the server is reachable
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (e *Exporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// EnsureSchema creates the uniqueness constraints the MERGE queries rely on.
// Statements are idempotent; a failing one is logged and the rest still run.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var firstErr error
	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			e.logger.Warn("Schema statement failed", zap.String("statement", stmt), zap.Error(err))
			if firstErr == nil {
				firstErr = apperrors.NewGraphQueryFailed(stmt, err)
			}
		}
	}
	return firstErr
}

// ExportReplies implements interactions.GraphSink
func (e *Exporter) ExportReplies(ctx context.Context, subject string, edges []interactions.LabeledEdge) error {
	if err := e.write(ctx, replyStatements(subject, edges)); err != nil {
		return err
	}

	e.logger.Info("Reply graph exported",
		zap.String("subject", subject),
		zap.Int("edges", len(edges)),
	)
	return nil
}

// ExportMentions implements interactions.GraphSink
func (e *Exporter) ExportMentions(ctx context.Context, subject string, mentions []interactions.MentionCount) error {
	if err := e.write(ctx, mentionStatements(subject, mentions)); err != nil {
		return err
	}

	e.logger.Info("Mention graph exported",
		zap.String("subject", subject),
		zap.Int("mentions", len(mentions)),
	)
	return nil
}

// ReplyCounts reads back the exported reply edges of a subject, busiest first
func (e *Exporter) ReplyCounts(ctx context.Context, subject string) ([]interactions.LabeledEdge, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, replyCountsQuery, map[string]interface{}{"subject": subject})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("reply counts", err)
	}

	edges := []interactions.LabeledEdge{}
	for result.Next(ctx) {
		record := result.Record()
		edges = append(edges, interactions.LabeledEdge{
			FromID: getInt64FromRecord(record, "from_id"),
			ToID:   getInt64FromRecord(record, "to_id"),
			From:   getStringFromRecord(record, "from"),
			To:     getStringFromRecord(record, "to"),
			Count:  getIntFromRecord(record, "count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("reply counts", err)
	}
	return edges, nil
}

// MentionCounts reads back the exported mentions of a subject, most frequent first
func (e *Exporter) MentionCounts(ctx context.Context, subject string) ([]interactions.MentionCount, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, mentionCountsQuery, map[string]interface{}{"subject": subject})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("mention counts", err)
	}

	mentions := []interactions.MentionCount{}
	for result.Next(ctx) {
		record := result.Record()
		mentions = append(mentions, interactions.MentionCount{
			Mention: getStringFromRecord(record, "mention"),
			Count:   getIntFromRecord(record, "count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("mention counts", err)
	}
	return mentions, nil
}

// replyStatements clears the subject's reply edges and writes the current ones
func replyStatements(subject string, edges []interactions.LabeledEdge) []statement {
	stmts := []statement{{query: replyClearQuery, params: map[string]interface{}{"subject": subject}}}
	if len(edges) > 0 {
		stmts = append(stmts, statement{query: replyExportQuery, params: replyParams(subject, edges)})
	}
	return stmts
}

// mentionStatements clears the subject's mention edges and writes the current ones
func mentionStatements(subject string, mentions []interactions.MentionCount) []statement {
	stmts := []statement{{query: mentionClearQuery, params: map[string]interface{}{"subject": subject}}}
	if len(mentions) > 0 {
		stmts = append(stmts, statement{query: mentionExportQuery, params: mentionParams(subject, mentions)})
	}
	return stmts
}

// write runs stmts in order inside one write transaction
func (e *Exporter) write(ctx context.Context, stmts []statement) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var failed string
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, stmt := range stmts {
			result, err := tx.Run(ctx, stmt.query, stmt.params)
			if err != nil {
				failed = stmt.query
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				failed = stmt.query
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed(failed, err)
	}
	return nil
}
