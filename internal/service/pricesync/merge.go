package pricesync

import "github.com/mamadbah2/pvoil/internal/domain/models"

// Merge concatenates existing and fresh records and keeps, for every
// (date, item) key, only the last occurrence. Surviving records keep their
// concatenation order, so fresh data wins over the existing ledger.
func Merge(existing, fresh []models.PriceRecord) []models.PriceRecord {
	all := make([]models.PriceRecord, 0, len(existing)+len(fresh))
	all = append(all, existing...)
	all = append(all, fresh...)

	last := make(map[models.RecordKey]int, len(all))
	for i, rec := range all {
		last[rec.Key()] = i
	}

	merged := make([]models.PriceRecord, 0, len(last))
	for i, rec := range all {
		if last[rec.Key()] == i {
			merged = append(merged, rec)
		}
	}
	return merged
}
