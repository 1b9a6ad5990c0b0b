package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/repository/ledger"
)

// ErrNoData is returned when the ledger holds nothing for the requested view.
var ErrNoData = errors.New("no price data")

// LedgerReader is the read side of the ledger repository.
type LedgerReader interface {
	Load(ctx context.Context) ([]models.PriceRecord, error)
}

// Snapshot lists every item price recorded for one date.
type Snapshot struct {
	Date   time.Time            `json:"date"`
	Prices []models.PriceRecord `json:"prices"`
}

// Service exposes read-only views over the price ledger.
type Service struct {
	repo   LedgerReader
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repo LedgerReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Latest returns the prices recorded at the ledger's most recent date.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}

	latest, ok := ledger.MaxDate(records)
	if !ok {
		return Snapshot{}, ErrNoData
	}
	return snapshotAt(records, latest), nil
}

// OnDate returns the prices recorded for a specific date.
func (s *Service) OnDate(ctx context.Context, date time.Time) (Snapshot, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}

	snap := snapshotAt(records, date)
	if len(snap.Prices) == 0 {
		return Snapshot{}, fmt.Errorf("%w for %s", ErrNoData, models.FormatDate(date))
	}
	return snap, nil
}

// Changes compares every item at the latest date with its previous price.
func (s *Service) Changes(ctx context.Context) ([]models.PriceChange, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	changes := ComputeChanges(records)
	if len(changes) == 0 {
		return nil, ErrNoData
	}
	s.logger.Debug("computed price changes", zap.Int("items", len(changes)))
	return changes, nil
}

// ComputeChanges returns, for each item priced at the latest ledger date, the
// difference with the item's most recent earlier price. Items are sorted by name.
func ComputeChanges(records []models.PriceRecord) []models.PriceChange {
	latest, ok := ledger.MaxDate(records)
	if !ok {
		return nil
	}

	previous := make(map[string]models.PriceRecord)
	current := make(map[string]models.PriceRecord)
	for _, rec := range records {
		if rec.Date.Equal(latest) {
			current[rec.ItemName] = rec
			continue
		}
		if prev, seen := previous[rec.ItemName]; !seen || rec.Date.After(prev.Date) {
			previous[rec.ItemName] = rec
		}
	}

	changes := make([]models.PriceChange, 0, len(current))
	for item, rec := range current {
		change := models.PriceChange{
			ItemName: item,
			Date:     rec.Date,
			Price:    rec.Price,
		}
		if prev, ok := previous[item]; ok {
			change.HasPrevious = true
			prevDate := prev.Date
			change.PreviousDate = &prevDate
			change.PreviousPrice = prev.Price
			change.Delta = rec.Price - prev.Price
		}
		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].ItemName < changes[j].ItemName })
	return changes
}

// FormatSummary renders a short plain-text summary of a ledger update.
func FormatSummary(update models.LedgerUpdate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PVOIL: %d new price records for %s", update.NewRecords, strings.Join(models.FormatDates(update.NewDates), ", "))

	for _, change := range ComputeChanges(update.Records) {
		fmt.Fprintf(&b, "\n- %s: %s đ", change.ItemName, formatVND(change.Price))
		if change.HasPrevious && change.Delta != 0 {
			sign := "+"
			if change.Delta < 0 {
				sign = "-"
			}
			delta := change.Delta
			if delta < 0 {
				delta = -delta
			}
			fmt.Fprintf(&b, " (%s%s)", sign, formatVND(delta))
		}
	}

	return b.String()
}

func snapshotAt(records []models.PriceRecord, date time.Time) Snapshot {
	snap := Snapshot{Date: date, Prices: []models.PriceRecord{}}
	for _, rec := range records {
		if rec.Date.Equal(date) {
			snap.Prices = append(snap.Prices, rec)
		}
	}
	return snap
}

// formatVND groups thousands with dots, e.g. 22470 -> "22.470".
func formatVND(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
