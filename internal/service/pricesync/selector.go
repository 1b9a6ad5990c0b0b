package pricesync

import (
	"sort"
	"time"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

// SelectNew returns fetch keys for the remote dates strictly after the
// low-water mark, oldest first. When hasMark is false every remote date is
// selected.
func SelectNew(remote []time.Time, mark time.Time, hasMark bool, timeSuffix string) []models.FetchKey {
	keys := make([]models.FetchKey, 0, len(remote))
	for _, date := range remote {
		if hasMark && !date.After(mark) {
			continue
		}
		keys = append(keys, models.NewFetchKey(date, timeSuffix))
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Date.Before(keys[j].Date) })
	return keys
}
