package discovery

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/pkg/clients/pvoil"
)

const listingDateLayout = "02-01-2006"

var datePattern = regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`)

// Service discovers the calendar dates advertised on the PVOIL listing page.
type Service struct {
	client pvoil.Client
	logger *zap.Logger
}

// NewService wires a new discovery service instance.
func NewService(client pvoil.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Discover fetches the listing page and returns the unique advertised dates,
// newest first. A transport or parse failure is returned to the caller which
// decides whether an empty result is fatal.
func (s *Service) Discover(ctx context.Context) ([]time.Time, error) {
	s.logger.Info("fetching dates from listing page")

	body, err := s.client.ListingPage(ctx)
	if err != nil {
		return nil, err
	}

	dates, err := ExtractDates(body, s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Info("discovered remote dates", zap.Int("count", len(dates)))
	return dates, nil
}

// ExtractDates scans the visible text of an HTML document for DD-MM-YYYY
// substrings and returns them deduplicated, newest first. Matches that are not
// real calendar dates are skipped.
func ExtractDates(html []byte, logger *zap.Logger) ([]time.Time, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	seen := make(map[time.Time]struct{})
	dates := []time.Time{}
	for _, match := range datePattern.FindAllString(doc.Text(), -1) {
		date, err := time.Parse(listingDateLayout, match)
		if err != nil {
			logger.Debug("skip invalid listing date", zap.String("value", match), zap.Error(err))
			continue
		}
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}
