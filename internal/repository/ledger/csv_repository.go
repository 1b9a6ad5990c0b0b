package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

// Header is the column layout of the persisted ledger.
var Header = []string{"Ngày", "Mặt hàng", "Giá (VND)"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Repository persists the cumulative price ledger.
type Repository interface {
	Load(ctx context.Context) ([]models.PriceRecord, error)
	Save(ctx context.Context, records []models.PriceRecord) error
	Path() string
}

// CSVRepository stores the ledger as a UTF-8 (BOM) comma separated file.
type CSVRepository struct {
	path   string
	logger *zap.Logger
}

// NewCSVRepository builds a CSV backed ledger at path.
func NewCSVRepository(path string, logger *zap.Logger) *CSVRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVRepository{path: path, logger: logger}
}

// Path returns the ledger file location.
func (r *CSVRepository) Path() string {
	return r.path
}

// Load reads every record of the ledger in file order. A missing or empty
// file yields an empty ledger.
func (r *CSVRepository) Load(ctx context.Context) ([]models.PriceRecord, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Info("ledger file not found, starting empty", zap.String("path", r.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", r.path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", r.path, err)
	}

	r.logger.Debug("ledger loaded", zap.String("path", r.path), zap.Int("records", len(records)))
	return records, nil
}

// Save rewrites the whole ledger. Data goes to a temporary file in the same
// directory which is then renamed over the target.
func (r *CSVRepository) Save(ctx context.Context, records []models.PriceRecord) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if err := Encode(tmp, records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod ledger: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace ledger %s: %w", r.path, err)
	}

	r.logger.Info("ledger saved", zap.String("path", r.path), zap.Int("records", len(records)))
	return nil
}

// Decode parses ledger CSV content. A leading byte-order mark is optional.
func Decode(src io.Reader) ([]models.PriceRecord, error) {
	reader := csv.NewReader(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, column := range Header {
		if strings.TrimSpace(header[i]) != column {
			return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(header, ","), strings.Join(Header, ","))
		}
	}

	var records []models.PriceRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		date, err := models.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("line %d: invalid price %q", line, row[2])
		}

		records = append(records, models.PriceRecord{
			Date:     date,
			ItemName: row[1],
			Price:    price,
		})
	}

	return records, nil
}

// Encode writes the BOM, the header and one row per record.
func Encode(dst io.Writer, records []models.PriceRecord) error {
	if _, err := dst.Write(utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(dst)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{models.FormatDate(rec.Date), rec.ItemName, strconv.FormatInt(rec.Price, 10)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// MaxDate returns the low-water mark of the ledger, or false when it holds no records.
func MaxDate(records []models.PriceRecord) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, rec := range records {
		if !found || rec.Date.After(latest) {
			latest = rec.Date
			found = true
		}
	}
	return latest, found
}
