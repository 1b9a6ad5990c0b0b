package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

const priceTable = `<table>
<tr><th>STT</th><th>Mặt hàng</th><th>Giá</th><th>Chênh lệch</th></tr>
<tr><td>1</td><td>Xăng E5 RON 92-II</td><td>19.000đ</td><td>0</td></tr>
</table>`

func pvoilSource(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tin-gia-xang-dau":
			_, _ = w.Write([]byte(`<ul><li>Điều chỉnh giá xăng dầu 01-01-2024</li></ul>`))
		case "/api/oilprice/load-view":
			if r.URL.Query().Get("date") != "01/01/2024 15:00:00" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(priceTable))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// syncEnv configures a sync against a local source with the run history store
// and the Sheets mirror both pointing at things that do not exist.
func syncEnv(t *testing.T) string {
	t.Helper()

	srv := pvoilSource(t)
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.csv")

	t.Setenv("PVOIL_LISTING_URL", srv.URL+"/tin-gia-xang-dau")
	t.Setenv("PVOIL_PRICE_API_URL", srv.URL+"/api/oilprice/load-view")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("LEDGER_PATH", ledgerPath)
	t.Setenv("GIT_ENABLED", "false")
	t.Setenv("MONGODB_URI", "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=300&connectTimeoutMS=300")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", filepath.Join(dir, "missing-credentials.json"))
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	t.Setenv("WHATSAPP_NOTIFY_TO", "")
	t.Setenv("LOG_LEVEL", "error")

	envFile = ""
	return ledgerPath
}

func TestNewSyncAppToleratesUnavailableIntegrations(t *testing.T) {
	ledgerPath := syncEnv(t)
	ctx := context.Background()

	a, err := newSyncApp(ctx)
	require.NoError(t, err)
	defer func() { _ = a.close(ctx) }()

	assert.Nil(t, a.runs)
	assert.Nil(t, a.runLister())

	report, err := a.sync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RunUpdated, report.Status)
	assert.Equal(t, 1, report.NewRecords)

	raw, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Equal(t, "Ngày,Mặt hàng,Giá (VND)\n01/01/2024,Xăng E5 RON 92-II,19000\n",
		strings.TrimPrefix(string(raw), "\xEF\xBB\xBF"))
}

func TestSyncCommandSucceedsWithUnavailableIntegrations(t *testing.T) {
	syncEnv(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sync"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "added 1 records for 01/01/2024 (1 total)")
}
