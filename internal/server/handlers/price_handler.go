package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/service/pricesync"
	"github.com/mamadbah2/pvoil/internal/service/reporting"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// PriceReader serves read-only ledger views.
type PriceReader interface {
	Latest(ctx context.Context) (reporting.Snapshot, error)
	OnDate(ctx context.Context, date time.Time) (reporting.Snapshot, error)
	Changes(ctx context.Context) ([]models.PriceChange, error)
}

// Syncer triggers a synchronization run.
type Syncer interface {
	Run(ctx context.Context) (models.RunReport, error)
}

// RunLister lists archived run reports.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int64) ([]models.RunReport, error)
}

// PriceHandler exposes the ledger and sync operations over HTTP.
type PriceHandler struct {
	prices PriceReader
	syncer Syncer
	runs   RunLister
	logger *zap.Logger
}

// NewPriceHandler constructs the HTTP handler adapter. runs may be nil when
// no run history store is configured.
func NewPriceHandler(prices PriceReader, syncer Syncer, runs RunLister, logger *zap.Logger) *PriceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHandler{prices: prices, syncer: syncer, runs: runs, logger: logger}
}

// Prices returns the latest prices, or those of ?date=DD/MM/YYYY.
func (h *PriceHandler) Prices(c *gin.Context) {
	var (
		snap reporting.Snapshot
		err  error
	)

	if raw := c.Query("date"); raw != "" {
		date, parseErr := models.ParseDate(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be DD/MM/YYYY"})
			return
		}
		snap, err = h.prices.OnDate(c.Request.Context(), date)
	} else {
		snap, err = h.prices.Latest(c.Request.Context())
	}

	if err != nil {
		h.respondReadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   models.FormatDate(snap.Date),
		"prices": toPriceRows(snap.Prices),
	})
}

// Changes returns the latest price of every item with its previous value.
func (h *PriceHandler) Changes(c *gin.Context) {
	changes, err := h.prices.Changes(c.Request.Context())
	if err != nil {
		h.respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

// Sync runs one synchronization and returns its report.
func (h *PriceHandler) Sync(c *gin.Context) {
	report, err := h.syncer.Run(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pricesync.ErrNoRemoteDates) || errors.Is(err, pricesync.ErrNoRecords) {
			status = http.StatusBadGateway
		}
		h.logger.Warn("sync via api failed", zap.Error(err))
		c.JSON(status, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Runs lists recent run reports, ?limit=N.
func (h *PriceHandler) Runs(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run history is not configured"})
		return
	}

	limit := int64(defaultRunsLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	reports, err := h.runs.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed listing runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": reports})
}

func (h *PriceHandler) respondReadError(c *gin.Context, err error) {
	if errors.Is(err, reporting.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("failed reading ledger", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read ledger"})
}

type priceRow struct {
	Date     string `json:"date"`
	ItemName string `json:"item_name"`
	Price    int64  `json:"price"`
}

func toPriceRows(records []models.PriceRecord) []priceRow {
	rows := make([]priceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, priceRow{Date: models.FormatDate(rec.Date), ItemName: rec.ItemName, Price: rec.Price})
	}
	return rows
}
