package interactions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"tgosint/backend/internal/archive"
	"tgosint/backend/internal/identity"
	apperrors "tgosint/backend/pkg/errors"
)

const chatA = `[
	{"id": 1, "date": "2024-03-04T09:00:00+00:00", "text": "first", "from_id": {"_": "PeerUser", "user_id": 1}},
	{"id": 2, "date": "2024-03-04T09:05:00+00:00", "text": "answer", "from_id": {"_": "PeerUser", "user_id": 2}, "reply_to_message_id": 1},
	{"id": 3, "date": "2024-03-04T10:00:00+00:00", "text": "me again", "from_id": {"_": "PeerUser", "user_id": 1}, "reply_to_message_id": 1}
]`

const chatB = `[
	{"id": 1, "date": "2024-03-05T21:00:00+00:00", "text": "hello @bob_handle", "from_id": {"_": "PeerUser", "user_id": 3}}
]`

type recordingSink struct {
	replies      []LabeledEdge
	mentions     []MentionCount
	replyCalls   int
	mentionCalls int
	err          error
}

func (s *recordingSink) ExportReplies(ctx context.Context, subject string, edges []LabeledEdge) error {
	s.replyCalls++
	s.replies = append(s.replies, edges...)
	return s.err
}

func (s *recordingSink) ExportMentions(ctx context.Context, subject string, mentions []MentionCount) error {
	s.mentionCalls++
	s.mentions = append(s.mentions, mentions...)
	return s.err
}

func subjectFolder(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "subject")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func newTestAnalyzer(t *testing.T, lookup identity.Lookup) *Analyzer {
	logger := zaptest.NewLogger(t)
	return NewAnalyzer(archive.NewReader(logger), identity.NewResolver(lookup, logger), logger)
}

func TestAnalyzer_SubjectScenario(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": chatA,
		"messages_b.json": chatB,
		"profile.json":    `{"user_id": 1}`,
	})
	lookup := identity.NewStaticLookup(nil)
	lookup.Errors[2] = errors.New("directory unavailable")
	analyzer := newTestAnalyzer(t, lookup)

	report, err := analyzer.Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"@bob_handle": 1}, report.Mentions.Counts)
	assert.Equal(t, 4, report.Mentions.Messages)

	replies := report.Replies
	assert.True(t, replies.Scoped)
	assert.Equal(t, "1", replies.SubjectLabel)
	assert.Equal(t, 1, replies.SelfReplies)
	assert.Equal(t, []LabeledEdge{{FromID: 2, ToID: 1, From: "2", To: "1", Count: 1}}, replies.All)
	assert.Equal(t, []int64{2}, replies.Unresolved)
	assert.Equal(t, []int64{2}, lookup.Calls())

	assert.JSONEq(t, `[{"mention": "@bob_handle", "count": 1}]`, readOutput(t, dir, "mentions.json"))
	assert.JSONEq(t, `[{"from": "2", "to": "1", "count": 1}]`, readOutput(t, dir, "replies.json"))
	assert.Equal(t, 4, report.Activity.Histogram.Total)

	// Nothing was resolved, so no cache file appears
	_, err = os.Stat(identity.CachePath(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzer_SubjectScenarioIndependentOfFileOrder(t *testing.T) {
	// Chat B's file sorts first and reuses message id 1
	dir := subjectFolder(t, map[string]string{
		"messages_zeta.json":  chatA,
		"messages_alpha.json": chatB,
		"profile.json":        `{"user_id": 1}`,
	})
	lookup := identity.NewStaticLookup(nil)
	lookup.Errors[2] = errors.New("directory unavailable")

	report, err := newTestAnalyzer(t, lookup).AnalyzeReplies(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []LabeledEdge{{FromID: 2, ToID: 1, From: "2", To: "1", Count: 1}}, report.All)
	assert.Equal(t, 1, report.SelfReplies)
	assert.JSONEq(t, `[{"from": "2", "to": "1", "count": 1}]`, readOutput(t, dir, "replies.json"))
}

func TestAnalyzer_ResolvesAndLabelsSubject(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": chatA,
		"profile.json":    `{"user_id": 1, "first_name": "Ivan", "last_name": "Petrov", "username": "ivanp"}`,
	})
	lookup := identity.NewStaticLookup(map[int64]string{2: "maria"})

	report, err := newTestAnalyzer(t, lookup).AnalyzeReplies(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "Ivan Petrov (ivanp)", report.SubjectLabel)
	assert.Equal(t, []LabeledEdge{{FromID: 2, ToID: 1, From: "@maria", To: "Ivan Petrov (ivanp)", Count: 1}}, report.All)
	assert.Equal(t, 1, report.Resolved)
	assert.JSONEq(t, `{"2": "@maria"}`, readOutput(t, dir, "identity_cache.json"))
}

func TestAnalyzer_CacheWithBadValueKeepsGoodEntries(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json":     chatA,
		"identity_cache.json": `{"1": "@ivanp", "77": 5}`,
	})
	lookup := identity.NewStaticLookup(map[int64]string{2: "maria"})

	report, err := newTestAnalyzer(t, lookup).AnalyzeReplies(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, lookup.Calls())
	assert.Equal(t, []LabeledEdge{{FromID: 2, ToID: 1, From: "@maria", To: "@ivanp", Count: 1}}, report.All)
	assert.JSONEq(t, `{"1": "@ivanp", "2": "@maria"}`, readOutput(t, dir, "identity_cache.json"))
}

func TestAnalyzer_SecondRunIsIdempotentAndOffline(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": chatA,
		"messages_b.json": chatB,
	})
	lookup := identity.NewStaticLookup(map[int64]string{1: "ivanp", 2: "maria"})
	analyzer := newTestAnalyzer(t, lookup)

	_, err := analyzer.Analyze(context.Background(), dir)
	require.NoError(t, err)
	firstMentions := readOutput(t, dir, "mentions.json")
	firstReplies := readOutput(t, dir, "replies.json")
	firstCache := readOutput(t, dir, "identity_cache.json")
	callsAfterFirst := len(lookup.Calls())
	assert.Equal(t, 2, callsAfterFirst)

	report, err := analyzer.Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, lookup.Calls(), callsAfterFirst)
	assert.Zero(t, report.Replies.Resolved)
	assert.Equal(t, firstMentions, readOutput(t, dir, "mentions.json"))
	assert.Equal(t, firstReplies, readOutput(t, dir, "replies.json"))
	assert.Equal(t, firstCache, readOutput(t, dir, "identity_cache.json"))
}

func TestAnalyzer_EmptyFolderWritesEmptyOutputs(t *testing.T) {
	dir := subjectFolder(t, nil)
	lookup := identity.NewStaticLookup(nil)

	report, err := newTestAnalyzer(t, lookup).Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, report.Mentions.All)
	assert.Empty(t, report.Replies.All)
	assert.Equal(t, "[]\n", readOutput(t, dir, "mentions.json"))
	assert.Equal(t, "[]\n", readOutput(t, dir, "replies.json"))
	assert.Empty(t, lookup.Calls())
}

func TestAnalyzer_MalformedProfileFallsBackToAllEdges(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": `[
			{"id": 1, "from_id": {"user_id": 5}},
			{"id": 2, "from_id": {"user_id": 6}, "reply_to_message_id": 1},
			{"id": 3, "from_id": {"user_id": 7}, "reply_to_message_id": 2}
		]`,
		"profile.json": `{"first_name": "no id"}`,
	})
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	analyzer := NewAnalyzer(archive.NewReader(logger), identity.NewResolver(nil, logger), logger)

	report, err := analyzer.AnalyzeReplies(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, report.Scoped)
	assert.Len(t, report.All, 2)
	assert.ElementsMatch(t, []int64{6, 5, 7}, report.Unresolved)
	assert.Equal(t, 1, logs.FilterMessage("Subject profile unusable, analysing all reply edges").Len())
}

func TestAnalyzer_TopTruncatesButOutputIsComplete(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": `[
			{"id": 1, "text": "@first_one @first_one @second_one @third_one"}
		]`,
	})
	analyzer := newTestAnalyzer(t, nil)
	analyzer.SetTopN(2, 0)

	report, err := analyzer.AnalyzeMentions(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.Top, 2)
	assert.Len(t, report.All, 3)
	assert.Equal(t, 4, report.Total)
	assert.Contains(t, readOutput(t, dir, "mentions.json"), "@third_one")

	mentions, replies := analyzer.TopN()
	assert.Equal(t, 2, mentions)
	assert.Equal(t, 10, replies)
}

func TestAnalyzer_ExportFailureIsNotFatal(t *testing.T) {
	dir := subjectFolder(t, map[string]string{
		"messages_a.json": chatA,
		"messages_b.json": chatB,
	})
	sink := &recordingSink{err: errors.New("graph down")}
	analyzer := newTestAnalyzer(t, identity.NewStaticLookup(map[int64]string{1: "ivanp", 2: "maria"}))
	analyzer.SetGraphSink(sink)

	_, err := analyzer.Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []MentionCount{{Mention: "@bob_handle", Count: 1}}, sink.mentions)
	assert.Equal(t, []LabeledEdge{{FromID: 2, ToID: 1, From: "@maria", To: "@ivanp", Count: 1}}, sink.replies)
}

func TestAnalyzer_EmptyResultStillExported(t *testing.T) {
	dir := subjectFolder(t, nil)
	sink := &recordingSink{}
	analyzer := newTestAnalyzer(t, nil)
	analyzer.SetGraphSink(sink)

	_, err := analyzer.Analyze(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, sink.replyCalls)
	assert.Equal(t, 1, sink.mentionCalls)
	assert.Empty(t, sink.replies)
	assert.Empty(t, sink.mentions)
}

func TestAnalyzer_UnreadableFolder(t *testing.T) {
	_, err := newTestAnalyzer(t, nil).AnalyzeMentions(context.Background(), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeArchive))
}
