package pricesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/repository/ledger"
)

var (
	// ErrNoRemoteDates means discovery produced nothing to work with.
	ErrNoRemoteDates = errors.New("no remote dates discovered")
	// ErrNoRecords means new dates were selected but none yielded a valid row.
	ErrNoRecords = errors.New("no price records fetched for new dates")
	// ErrLedger wraps failures reading the existing ledger.
	ErrLedger = errors.New("ledger unreadable")
	// ErrPersist wraps failures writing the merged ledger.
	ErrPersist = errors.New("ledger persist failed")
)

const archiveTimeout = 10 * time.Second

// Discoverer lists the dates advertised by the remote source.
type Discoverer interface {
	Discover(ctx context.Context) ([]time.Time, error)
}

// Fetcher retrieves the price rows for one date.
type Fetcher interface {
	Fetch(ctx context.Context, key models.FetchKey) ([]models.PriceRecord, error)
}

// Publisher propagates a rewritten ledger. It reports success and never fails the run.
type Publisher interface {
	Publish(ctx context.Context, update models.LedgerUpdate) bool
}

// RunStore archives run reports.
type RunStore interface {
	SaveRun(ctx context.Context, report models.RunReport) error
}

// Options carries the settings the synchronizer needs from configuration.
type Options struct {
	QueryTime string
}

// Service reconciles the remote price history with the local ledger.
type Service struct {
	opts       Options
	discoverer Discoverer
	fetcher    Fetcher
	ledger     ledger.Repository
	publisher  Publisher
	store      RunStore
	logger     *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewService wires a new synchronizer. publisher and store are optional.
func NewService(opts Options, discoverer Discoverer, fetcher Fetcher, repo ledger.Repository, publisher Publisher, store RunStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:       opts,
		discoverer: discoverer,
		fetcher:    fetcher,
		ledger:     repo,
		publisher:  publisher,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one incremental synchronization. The returned report is always
// populated; the error is non-nil only when the run failed. Concurrent calls
// are serialized.
func (s *Service) Run(ctx context.Context) (models.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := models.RunReport{
		StartedAt:     s.now(),
		SelectedDates: []string{},
		FetchedDates:  []string{},
		SkippedDates:  []string{},
	}

	err := s.run(ctx, &report)
	report.FinishedAt = s.now()
	if err != nil {
		report.Status = models.RunFailed
		report.Error = err.Error()
		s.logger.Error("sync run failed", zap.Error(err))
	} else {
		s.logger.Info("sync run finished",
			zap.String("status", string(report.Status)),
			zap.Int("new_records", report.NewRecords),
			zap.Int("total_records", report.TotalRecords),
			zap.Bool("published", report.Published),
			zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	}

	s.archive(ctx, report)
	return report, err
}

func (s *Service) run(ctx context.Context, report *models.RunReport) error {
	remote, err := s.discoverer.Discover(ctx)
	if err != nil {
		s.logger.Warn("date discovery failed", zap.Error(err))
	}
	report.RemoteDates = len(remote)
	if len(remote) == 0 {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoRemoteDates, err)
		}
		return ErrNoRemoteDates
	}

	existing, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLedger, err)
	}

	mark, hasMark := ledger.MaxDate(existing)
	if hasMark {
		report.LowWaterMark = models.FormatDate(mark)
	}
	s.logger.Info("ledger low-water mark",
		zap.String("last_date", report.LowWaterMark),
		zap.Int("records", len(existing)))

	keys := SelectNew(remote, mark, hasMark, s.opts.QueryTime)
	if len(keys) == 0 {
		s.logger.Info("no new dates to crawl")
		report.Status = models.RunNoop
		report.TotalRecords = len(existing)
		return nil
	}

	var (
		fresh    []models.PriceRecord
		newDates []time.Time
	)
	for _, key := range keys {
		date := models.FormatDate(key.Date)
		report.SelectedDates = append(report.SelectedDates, date)

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync interrupted before %s: %w", date, err)
		}

		records, err := s.fetcher.Fetch(ctx, key)
		if err != nil {
			s.logger.Warn("failed to fetch prices", zap.String("date", date), zap.Error(err))
			report.SkippedDates = append(report.SkippedDates, date)
			continue
		}
		if len(records) == 0 {
			report.SkippedDates = append(report.SkippedDates, date)
			continue
		}

		fresh = append(fresh, records...)
		newDates = append(newDates, key.Date)
		report.FetchedDates = append(report.FetchedDates, date)
	}

	if len(fresh) == 0 {
		report.TotalRecords = len(existing)
		return ErrNoRecords
	}

	merged := Merge(existing, fresh)
	if err := s.ledger.Save(ctx, merged); err != nil {
		report.TotalRecords = len(existing)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	report.Status = models.RunUpdated
	report.NewRecords = len(fresh)
	report.TotalRecords = len(merged)

	if s.publisher != nil {
		report.Published = s.publisher.Publish(ctx, models.LedgerUpdate{
			Path:       s.ledger.Path(),
			Records:    merged,
			NewDates:   newDates,
			NewRecords: len(fresh),
			UpdatedAt:  s.now(),
		})
	}

	return nil
}

func (s *Service) archive(ctx context.Context, report models.RunReport) {
	if s.store == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	if err := s.store.SaveRun(archiveCtx, report); err != nil {
		s.logger.Warn("failed to archive run report", zap.Error(err))
	}
}
