// Package app wires configuration into the analysis pipeline shared by the CLI and the HTTP server.
package app

import (
	"context"

	"go.uber.org/zap"

	"tgosint/backend/internal/archive"
	"tgosint/backend/internal/graph"
	"tgosint/backend/internal/identity"
	"tgosint/backend/internal/interactions"
	"tgosint/backend/pkg/config"
)

// App holds the long-lived dependencies of one process
type App struct {
	Config   *config.Config
	Reader   *archive.Reader
	Analyzer *interactions.Analyzer
	Exporter *graph.Exporter // Nil unless Neo4j export is enabled and reachable

	logger *zap.Logger
}

// New builds the analysis pipeline from cfg. An unreachable Neo4j server disables export
// instead of failing startup.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) *App {
	reader := archive.NewReader(log.Named("archive"))
	reader.SetRepair(cfg.ArchiveRepair)

	var lookup identity.Lookup
	if cfg.LookupEnabled() {
		lookup = identity.NewBotAPILookup(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.LookupRate, log.Named("botapi"))
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, uncached user ids stay numeric")
	}

	resolver := identity.NewResolver(lookup, log.Named("identity"))
	resolver.SetTimeout(cfg.LookupTimeout)
	resolver.SetConcurrency(cfg.LookupConcurrency)

	analyzer := interactions.NewAnalyzer(reader, resolver, log.Named("analysis"))
	analyzer.SetTopN(cfg.TopMentions, cfg.TopReplies)

	a := &App{
		Config:   cfg,
		Reader:   reader,
		Analyzer: analyzer,
		logger:   log,
	}

	if cfg.Neo4jExport {
		driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			log.Warn("Neo4j unreachable, graph export disabled", zap.Error(err))
		} else {
			a.Exporter = graph.NewExporter(driver, log.Named("graph"))
			if err := a.Exporter.EnsureSchema(ctx); err != nil {
				log.Warn("Graph schema incomplete", zap.Error(err))
			}
			analyzer.SetGraphSink(a.Exporter)
			log.Info("Graph export enabled", zap.String("uri", cfg.Neo4jURI))
		}
	}

	return a
}

// SubjectFolder resolves a subject name inside the configured data directory
func (a *App) SubjectFolder(name string) (string, error) {
	return archive.SubjectFolder(a.Config.DataDir, name)
}

// Close releases the Neo4j driver, if any
func (a *App) Close(ctx context.Context) {
	if a.Exporter == nil {
		return
	}
	if err := a.Exporter.Close(ctx); err != nil {
		a.logger.Warn("Failed to close Neo4j driver", zap.Error(err))
	}
}
