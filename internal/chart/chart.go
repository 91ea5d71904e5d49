package chart

import (
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
)

// YearRange returns the first and last day of the calendar year.
func YearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Aggregate sums the measure selected by vt per date. Dates without values are
// absent from the result.
func Aggregate(values []models.Value, vt models.ValueType) models.ChartData {
	data := make(models.ChartData)
	for _, v := range values {
		data[v.Date.Format(models.DateLayout)] += vt.Pick(v)
	}
	return data
}
