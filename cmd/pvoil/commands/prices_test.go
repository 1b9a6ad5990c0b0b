package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/service/reporting"
)

func TestRenderSnapshot(t *testing.T) {
	date := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	renderSnapshot(&out, reporting.Snapshot{
		Date:   date,
		Prices: []models.PriceRecord{{Date: date, ItemName: "Xăng E5 RON 92-II", Price: 19500}},
	})

	assert.Contains(t, out.String(), "Prices on 02/01/2024")
	assert.Contains(t, out.String(), "Xăng E5 RON 92-II")
	assert.Contains(t, out.String(), "19500")
	assert.Contains(t, out.String(), "╭")
}

func TestRenderChanges(t *testing.T) {
	previous := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	renderChanges(&out, []models.PriceChange{
		{ItemName: "Dầu KO", Date: latest, Price: 18000},
		{ItemName: "Xăng E5", Date: latest, Price: 19500, PreviousDate: &previous, PreviousPrice: 19000, Delta: 500, HasPrevious: true},
	})

	assert.Contains(t, out.String(), "19000 (01/01/2024)")
	assert.Contains(t, out.String(), "+500")
	assert.Contains(t, out.String(), "Dầu KO")
}
