package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/repository/ledger"
	"github.com/mamadbah2/pvoil/internal/repository/sheets"
)

// SheetsPublisher mirrors the full ledger into a Google Sheets range.
type SheetsPublisher struct {
	repo       sheets.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewSheetsPublisher builds a Sheets mirror publisher.
func NewSheetsPublisher(repo sheets.Repository, sheetRange string, logger *zap.Logger) *SheetsPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsPublisher{repo: repo, sheetRange: sheetRange, logger: logger}
}

func (p *SheetsPublisher) Name() string { return "sheets" }

func (p *SheetsPublisher) Publish(ctx context.Context, update models.LedgerUpdate) error {
	rows := make([][]interface{}, 0, len(update.Records)+1)

	header := make([]interface{}, 0, len(ledger.Header))
	for _, column := range ledger.Header {
		header = append(header, column)
	}
	rows = append(rows, header)

	for _, rec := range update.Records {
		rows = append(rows, []interface{}{models.FormatDate(rec.Date), rec.ItemName, rec.Price})
	}

	if err := p.repo.ReplaceRange(ctx, p.sheetRange, rows); err != nil {
		return err
	}
	p.logger.Debug("ledger mirrored to sheet", zap.String("range", p.sheetRange), zap.Int("rows", len(rows)))
	return nil
}
