package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

type stubClient struct {
	tables  map[string]string
	err     error
	queried []string
}

func (c *stubClient) ListingPage(ctx context.Context) ([]byte, error) {
	return nil, errors.New("not used")
}

func (c *stubClient) PriceTable(ctx context.Context, date string) ([]byte, error) {
	c.queried = append(c.queried, date)
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.tables[date]), nil
}

const priceTableHTML = `<div class="oil-price">
<table>
	<thead><tr><th>STT</th><th>Mặt hàng</th><th>Giá</th><th>Chênh lệch</th></tr></thead>
	<tbody>
		<tr><td>1</td><td> Xăng   E5 RON 92-II </td><td>22.470đ</td><td>+120</td></tr>
		<tr><td>2</td><td>Xăng RON 95-III</td><td>23,180 đ</td><td>+150</td></tr>
		<tr><td>3</td><td>Dầu DO 0,05S-II</td><td>Liên hệ</td><td>0</td></tr>
		<tr><td colspan="4">Giá áp dụng từ 15h00</td></tr>
		<tr><td>4</td><td>Dầu KO</td><td>20.400₫</td><td>-30</td></tr>
	</tbody>
</table>
<table><tr><td>9</td><td>Ignored</td><td>1</td><td>1</td></tr></table>
</div>`

func TestNormalizePrice(t *testing.T) {
	testCases := []struct {
		raw   string
		want  string
		valid bool
	}{
		{raw: "22.470đ", want: "22470", valid: true},
		{raw: "1,234", want: "1234", valid: true},
		{raw: " 19.000 ₫ ", want: "19000", valid: true},
		{raw: "20 400", want: "20400", valid: true},
		{raw: "abc", valid: false},
		{raw: "", valid: false},
		{raw: "đ", valid: false},
		{raw: "-1.000", valid: false},
		{raw: "12.5k", valid: false},
	}

	for _, tc := range testCases {
		got, ok := NormalizePrice(tc.raw)
		assert.Equal(t, tc.valid, ok, tc.raw)
		if tc.valid {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func TestParseTable(t *testing.T) {
	date := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	records, err := ParseTable([]byte(priceTableHTML), date, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.PriceRecord{
		{Date: date, ItemName: "Xăng E5 RON 92-II", Price: 22470},
		{Date: date, ItemName: "Xăng RON 95-III", Price: 23180},
		{Date: date, ItemName: "Dầu KO", Price: 20400},
	}, records)
}

func TestParseTableWithoutTable(t *testing.T) {
	records, err := ParseTable([]byte("<p>Không có dữ liệu</p>"), time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseTableHeaderOnly(t *testing.T) {
	html := `<table><tr><td>STT</td><td>Mặt hàng</td><td>Giá</td><td>+/-</td></tr></table>`
	records, err := ParseTable([]byte(html), time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetch(t *testing.T) {
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	key := models.NewFetchKey(date, "15:00:00")

	client := &stubClient{tables: map[string]string{
		"01/01/2024 15:00:00": `<table><tr><th>STT</th></tr><tr><td>1</td><td>Xăng E5</td><td>19.000đ</td><td>0</td></tr></table>`,
	}}
	records, err := NewService(client, nil).Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []string{"01/01/2024 15:00:00"}, client.queried)
	assert.Equal(t, []models.PriceRecord{{Date: date, ItemName: "Xăng E5", Price: 19000}}, records)

	client = &stubClient{err: errors.New("timeout")}
	records, err = NewService(client, nil).Fetch(context.Background(), key)
	require.Error(t, err)
	assert.Nil(t, records)

	client = &stubClient{tables: map[string]string{}}
	records, err = NewService(client, nil).Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, records)
}
