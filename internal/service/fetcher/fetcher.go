package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/pkg/clients/pvoil"
)

// Cell positions in a price table row: [0]=STT, [1]=item, [2]=price, [3]=change.
const (
	itemCell    = 1
	priceCell   = 2
	minRowCells = 4
)

var priceReplacer = strings.NewReplacer(
	"đ", "",
	"₫", "",
	".", "",
	",", "",
	" ", "",
	"\u00a0", "",
)

// Service fetches and parses the per-date price table.
type Service struct {
	client pvoil.Client
	logger *zap.Logger
}

// NewService wires a new fetcher service instance.
func NewService(client pvoil.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Fetch retrieves the price rows for one fetch key. Transport failures are
// returned; a missing table or a table without valid rows yields no records
// and no error.
func (s *Service) Fetch(ctx context.Context, key models.FetchKey) ([]models.PriceRecord, error) {
	date := models.FormatDate(key.Date)
	s.logger.Info("fetching prices", zap.String("date", date))

	body, err := s.client.PriceTable(ctx, key.Query)
	if err != nil {
		return nil, err
	}

	records, err := ParseTable(body, key.Date, s.logger)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		s.logger.Warn("no valid price data extracted", zap.String("date", date))
		return nil, nil
	}

	s.logger.Info("extracted price records", zap.String("date", date), zap.Int("records", len(records)))
	return records, nil
}

// ParseTable extracts price records from the first table of an HTML fragment.
// The first row is treated as the header.
func ParseTable(html []byte, date time.Time, logger *zap.Logger) ([]models.PriceRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse price table: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		logger.Warn("no table found", zap.String("date", models.FormatDate(date)))
		return nil, nil
	}

	var records []models.PriceRecord
	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minRowCells {
			return
		}

		item := cellText(cells.Eq(itemCell))
		rawPrice := cellText(cells.Eq(priceCell))

		price, ok := NormalizePrice(rawPrice)
		if !ok || item == "" {
			logger.Warn("invalid price row", zap.String("item", item), zap.String("price_raw", rawPrice))
			return
		}

		value, err := strconv.ParseInt(price, 10, 64)
		if err != nil {
			logger.Warn("price out of range", zap.String("item", item), zap.String("price_raw", rawPrice), zap.Error(err))
			return
		}

		records = append(records, models.PriceRecord{
			Date:     date,
			ItemName: item,
			Price:    value,
		})
	})

	return records, nil
}

// NormalizePrice strips currency symbols, thousands separators and spaces from
// a price cell. It reports false unless what remains is a non-empty run of
// decimal digits.
func NormalizePrice(raw string) (string, bool) {
	cleaned := priceReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return cleaned, true
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
