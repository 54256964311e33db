package interactions

import (
	"context"
	"path/filepath"

	"tgosint/backend/internal/activity"
	"tgosint/backend/internal/archive"
	"tgosint/backend/internal/constants"
	"tgosint/backend/internal/identity"
	"tgosint/backend/internal/render"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GraphSink receives computed interaction graphs, e.g. for export to a graph database
type GraphSink interface {
	ExportReplies(ctx context.Context, subject string, edges []LabeledEdge) error
	ExportMentions(ctx context.Context, subject string, mentions []MentionCount) error
}

// LabeledEdge is a reply edge with display labels for both endpoints
type LabeledEdge struct {
	FromID int64  `json:"from_id"`
	ToID   int64  `json:"to_id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Count  int    `json:"count"`
}

// MentionReport is the result of a mention analysis
type MentionReport struct {
	Subject    string         `json:"subject"`
	Top        []MentionCount `json:"top"`
	All        []MentionCount `json:"all"`
	Counts     map[string]int `json:"-"`
	Total      int            `json:"total"`
	Messages   int            `json:"messages"`
	OutputPath string         `json:"-"`
}

// ReplyReport is the result of a reply-graph analysis
type ReplyReport struct {
	Subject      string        `json:"subject"`
	SubjectLabel string        `json:"subject_label,omitempty"`
	Scoped       bool          `json:"scoped"`
	Top          []LabeledEdge `json:"top"`
	All          []LabeledEdge `json:"all"`
	Dangling     int           `json:"dangling"`
	SelfReplies  int           `json:"self_replies"`
	Unresolved   []int64       `json:"unresolved"`
	Resolved     int           `json:"resolved"` // Handles fetched from the directory this run
	Messages     int           `json:"messages"`
	OutputPath   string        `json:"-"`
}

// ActivityReport is the result of an activity analysis
type ActivityReport struct {
	Subject    string             `json:"subject"`
	Histogram  activity.Histogram `json:"histogram"`
	OutputPath string             `json:"-"`
}

// Report bundles every analysis of one subject
type Report struct {
	Mentions *MentionReport  `json:"mentions"`
	Replies  *ReplyReport    `json:"replies"`
	Activity *ActivityReport `json:"activity"`
}

// Analyzer runs interaction analyses over subject folders.
// Malformed input is logged and absorbed; only an unreadable folder or a failed
// output write is returned as an error.
type Analyzer struct {
	reader      *archive.Reader
	resolver    *identity.Resolver
	sink        GraphSink
	logger      *zap.Logger
	topMentions int
	topReplies  int
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(reader *archive.Reader, resolver *identity.Resolver, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		reader:      reader,
		resolver:    resolver,
		logger:      logger,
		topMentions: constants.DefaultTopMentions,
		topReplies:  constants.DefaultTopReplies,
	}
}

// SetGraphSink enables exporting results after each analysis
func (a *Analyzer) SetGraphSink(sink GraphSink) {
	a.sink = sink
}

// SetTopN sets how many entries the Top views keep
func (a *Analyzer) SetTopN(mentions, replies int) {
	if mentions > 0 {
		a.topMentions = mentions
	}
	if replies > 0 {
		a.topReplies = replies
	}
}

// TopN returns the configured Top view sizes
func (a *Analyzer) TopN() (mentions, replies int) {
	return a.topMentions, a.topReplies
}

func (a *Analyzer) runLogger(folder, analysis string) *zap.Logger {
	return a.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("folder", folder),
		zap.String("analysis", analysis),
	)
}

// AnalyzeMentions tallies @handles across the subject's archive and writes mentions.json
func (a *Analyzer) AnalyzeMentions(ctx context.Context, folder string) (*MentionReport, error) {
	arc, err := a.reader.Read(folder)
	if err != nil {
		return nil, err
	}
	return a.mentions(ctx, a.runLogger(folder, "mentions"), arc)
}

// AnalyzeReplies builds the reply graph, resolves participant handles and writes replies.json
func (a *Analyzer) AnalyzeReplies(ctx context.Context, folder string) (*ReplyReport, error) {
	arc, err := a.reader.Read(folder)
	if err != nil {
		return nil, err
	}
	return a.replies(ctx, a.runLogger(folder, "replies"), arc)
}

// AnalyzeActivity builds hourly and weekday histograms and writes activity.json
func (a *Analyzer) AnalyzeActivity(ctx context.Context, folder string) (*ActivityReport, error) {
	arc, err := a.reader.Read(folder)
	if err != nil {
		return nil, err
	}
	return a.activity(a.runLogger(folder, "activity"), arc)
}

// Analyze runs every analysis over a single read of the archive
func (a *Analyzer) Analyze(ctx context.Context, folder string) (*Report, error) {
	arc, err := a.reader.Read(folder)
	if err != nil {
		return nil, err
	}
	log := a.runLogger(folder, "all")

	mentions, err := a.mentions(ctx, log, arc)
	if err != nil {
		return nil, err
	}
	replies, err := a.replies(ctx, log, arc)
	if err != nil {
		return nil, err
	}
	act, err := a.activity(log, arc)
	if err != nil {
		return nil, err
	}
	return &Report{Mentions: mentions, Replies: replies, Activity: act}, nil
}

func (a *Analyzer) mentions(ctx context.Context, log *zap.Logger, arc *archive.Archive) (*MentionReport, error) {
	tally := ExtractMentions(arc.Messages)
	ranked := tally.Ranked()

	path, err := render.WriteMentions(arc.Folder, MentionRows(ranked))
	if err != nil {
		return nil, err
	}

	subject := filepath.Base(arc.Folder)
	if a.sink != nil {
		if err := a.sink.ExportMentions(ctx, subject, ranked); err != nil {
			log.Warn("Mention export failed", zap.Error(err))
		}
	}

	log.Info("Mention analysis finished",
		zap.Int("distinct", len(ranked)),
		zap.Int("total", tally.Total()),
		zap.String("output", path),
	)

	return &MentionReport{
		Subject:    subject,
		Top:        top(ranked, a.topMentions),
		All:        ranked,
		Counts:     tally.Counts(),
		Total:      tally.Total(),
		Messages:   len(arc.Messages),
		OutputPath: path,
	}, nil
}

func (a *Analyzer) replies(ctx context.Context, log *zap.Logger, arc *archive.Archive) (*ReplyReport, error) {
	profile, err := a.reader.ReadProfile(arc.Folder)
	if err != nil {
		log.Warn("Subject profile unusable, analysing all reply edges", zap.Error(err))
		profile = nil
	}

	var subjectID *int64
	labels := make(map[int64]string)
	if profile != nil {
		id := profile.UserID
		subjectID = &id
		labels[id] = profile.DisplayLabel()
	}

	graph := BuildReplyGraph(arc.Messages, subjectID)
	edges := graph.Edges()

	var toResolve []int64
	for _, id := range graph.Participants() {
		if _, ok := labels[id]; !ok {
			toResolve = append(toResolve, id)
		}
	}

	resolution := identity.Resolution{}
	if len(toResolve) > 0 {
		cache, err := identity.LoadCache(arc.Folder)
		if err != nil {
			log.Warn("Identity cache unreadable, starting empty", zap.Error(err))
		}
		resolution = a.resolver.Resolve(ctx, toResolve, cache)
		if added := cache.Merge(resolution.Fresh); added > 0 {
			if err := identity.SaveCache(arc.Folder, cache); err != nil {
				log.Warn("Identity cache not saved", zap.Error(err))
			} else {
				log.Info("Identity cache updated",
					zap.Int("added", added),
					zap.Int("size", len(cache)),
				)
			}
		}
	}

	labelOf := func(id int64) string {
		if label, ok := labels[id]; ok {
			return label
		}
		return resolution.Label(id)
	}

	labeled := make([]LabeledEdge, 0, len(edges))
	for _, edge := range edges {
		labeled = append(labeled, LabeledEdge{
			FromID: edge.From,
			ToID:   edge.To,
			From:   labelOf(edge.From),
			To:     labelOf(edge.To),
			Count:  edge.Count,
		})
	}

	path, err := render.WriteReplies(arc.Folder, ReplyRows(labeled))
	if err != nil {
		return nil, err
	}

	subject := filepath.Base(arc.Folder)
	if a.sink != nil {
		if err := a.sink.ExportReplies(ctx, subject, labeled); err != nil {
			log.Warn("Reply export failed", zap.Error(err))
		}
	}

	log.Info("Reply analysis finished",
		zap.Bool("scoped", subjectID != nil),
		zap.Int("edges", len(labeled)),
		zap.Int("dangling", graph.Dangling),
		zap.Int("self_replies", graph.SelfReplies),
		zap.Int("unresolved", len(resolution.Unresolved)),
		zap.String("output", path),
	)

	report := &ReplyReport{
		Subject:     subject,
		Scoped:      subjectID != nil,
		Top:         top(labeled, a.topReplies),
		All:         labeled,
		Dangling:    graph.Dangling,
		SelfReplies: graph.SelfReplies,
		Unresolved:  resolution.Unresolved,
		Resolved:    len(resolution.Fresh),
		Messages:    len(arc.Messages),
		OutputPath:  path,
	}
	if profile != nil {
		report.SubjectLabel = labels[profile.UserID]
	}
	return report, nil
}

func (a *Analyzer) activity(log *zap.Logger, arc *archive.Archive) (*ActivityReport, error) {
	hist := activity.Build(arc.Messages)
	path, err := render.WriteActivity(arc.Folder, hist)
	if err != nil {
		return nil, err
	}

	log.Info("Activity analysis finished",
		zap.Int("dated", hist.Total),
		zap.Int("undated", hist.Undated),
		zap.String("output", path),
	)

	return &ActivityReport{
		Subject:    filepath.Base(arc.Folder),
		Histogram:  hist,
		OutputPath: path,
	}, nil
}

// MentionRows converts ranked mentions to their persisted form
func MentionRows(mentions []MentionCount) []render.MentionRow {
	rows := make([]render.MentionRow, 0, len(mentions))
	for _, m := range mentions {
		rows = append(rows, render.MentionRow{Mention: m.Mention, Count: m.Count})
	}
	return rows
}

// ReplyRows converts labeled edges to their persisted form
func ReplyRows(edges []LabeledEdge) []render.ReplyRow {
	rows := make([]render.ReplyRow, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, render.ReplyRow{From: e.From, To: e.To, Count: e.Count})
	}
	return rows
}
