package commands

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/config"
	"github.com/mamadbah2/pvoil/internal/publisher"
	"github.com/mamadbah2/pvoil/internal/repository/ledger"
	"github.com/mamadbah2/pvoil/internal/repository/mongodb"
	"github.com/mamadbah2/pvoil/internal/repository/sheets"
	"github.com/mamadbah2/pvoil/internal/server/handlers"
	"github.com/mamadbah2/pvoil/internal/service/discovery"
	"github.com/mamadbah2/pvoil/internal/service/fetcher"
	"github.com/mamadbah2/pvoil/internal/service/pricesync"
	"github.com/mamadbah2/pvoil/internal/service/reporting"
	"github.com/mamadbah2/pvoil/pkg/clients/pvoil"
	whatsappclient "github.com/mamadbah2/pvoil/pkg/clients/whatsapp"
	"github.com/mamadbah2/pvoil/pkg/logger"
)

const connectTimeout = 10 * time.Second

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	ledger    *ledger.CSVRepository
	reporting *reporting.Service
	sync      *pricesync.Service
	runs      *mongodb.MongoDBRepository

	closers []func(context.Context) error
}

// newBaseApp loads configuration, the logger and the ledger repository.
func newBaseApp() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	baseLogger, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(baseLogger)

	repo := ledger.NewCSVRepository(cfg.Ledger.Path, baseLogger.Named("repo.ledger"))

	return &app{
		cfg:       cfg,
		logger:    baseLogger,
		ledger:    repo,
		reporting: reporting.NewService(repo, baseLogger.Named("svc.reporting")),
	}, nil
}

// newSyncApp additionally wires the source clients, publishers and run history.
func newSyncApp(ctx context.Context) (*app, error) {
	a, err := newBaseApp()
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	source := pvoil.NewClient(cfg.Source)
	discoverer := discovery.NewService(source, a.logger.Named("svc.discovery"))
	fetch := fetcher.NewService(source, a.logger.Named("svc.fetcher"))

	pubs := a.publishers(ctx)
	chain := publisher.NewChain(a.logger.Named("publisher"), pubs...)

	var pub pricesync.Publisher
	if chain.Len() > 0 {
		pub = chain
	}

	var store pricesync.RunStore
	if runs := a.runHistory(ctx); runs != nil {
		a.runs = runs
		a.closers = append(a.closers, runs.Close)
		store = runs
	}

	a.sync = pricesync.NewService(
		pricesync.Options{QueryTime: cfg.Source.QueryTime},
		discoverer,
		fetch,
		a.ledger,
		pub,
		store,
		a.logger.Named("svc.sync"),
	)
	return a, nil
}

// runHistory connects the run history store. Run history is advisory, so a
// store that cannot be reached leaves it disabled.
func (a *app) runHistory(ctx context.Context) *mongodb.MongoDBRepository {
	if !a.cfg.MongoDB.Enabled() {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	runs, err := mongodb.NewMongoDBRepository(connectCtx, a.cfg.MongoDB.URI, a.cfg.MongoDB.DBName)
	if err != nil {
		a.logger.Warn("run history disabled", zap.Error(err))
		return nil
	}
	a.logger.Info("run history enabled", zap.String("db", a.cfg.MongoDB.DBName))
	return runs
}

// publishers builds every configured publisher. One that cannot be set up is
// skipped with a warning.
func (a *app) publishers(ctx context.Context) []publisher.Publisher {
	cfg := a.cfg
	var pubs []publisher.Publisher

	if cfg.Git.Enabled {
		pubs = append(pubs, publisher.NewGitPublisher(cfg.Git, nil, a.logger.Named("publisher.git")))
	}

	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, a.logger.Named("repo.sheets"))
		if err != nil {
			a.logger.Warn("sheets publisher disabled", zap.Error(err))
		} else {
			pubs = append(pubs, publisher.NewSheetsPublisher(repo, cfg.Sheets.Range, a.logger.Named("publisher.sheets")))
		}
	}

	if cfg.WhatsApp.Enabled() {
		client := whatsappclient.NewClient(cfg.WhatsApp)
		pubs = append(pubs, publisher.NewWhatsAppPublisher(client, cfg.WhatsApp.NotifyTo, a.logger.Named("publisher.whatsapp")))
	}

	return pubs
}

// runLister returns the run history store, or nil when none is configured.
func (a *app) runLister() handlers.RunLister {
	if a.runs == nil {
		return nil
	}
	return a.runs
}

func (a *app) close(ctx context.Context) error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i](ctx))
	}
	_ = a.logger.Sync()
	return err
}
