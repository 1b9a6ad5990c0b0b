package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	listing []byte
	err     error
}

func (c stubClient) ListingPage(ctx context.Context) ([]byte, error) {
	return c.listing, c.err
}

func (c stubClient) PriceTable(ctx context.Context, date string) ([]byte, error) {
	return nil, errors.New("not used")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDates(t *testing.T) {
	html := []byte(`<html><body>
		<ul>
			<li><a href="/a">Điều chỉnh giá xăng dầu 02-01-2024</a></li>
			<li><a href="/b">Điều chỉnh giá xăng dầu 01-01-2024</a></li>
			<li><span>Cập nhật 02-01-2024</span></li>
			<li>Không hợp lệ 31-02-2024</li>
			<li>Mã 123-45-67890 và 1-1-2024</li>
			<li>Tháng trước 28-12-2023</li>
		</ul>
	</body></html>`)

	dates, err := ExtractDates(html, nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		day(2024, time.January, 2),
		day(2024, time.January, 1),
		day(2023, time.December, 28),
	}, dates)
}

func TestExtractDatesNone(t *testing.T) {
	dates, err := ExtractDates([]byte("<p>no dates here</p>"), nil)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestDiscover(t *testing.T) {
	svc := NewService(stubClient{listing: []byte("<p>05-03-2024</p>")}, nil)
	dates, err := svc.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, time.March, 5)}, dates)

	svc = NewService(stubClient{err: errors.New("connection refused")}, nil)
	dates, err = svc.Discover(context.Background())
	require.Error(t, err)
	assert.Empty(t, dates)
}
