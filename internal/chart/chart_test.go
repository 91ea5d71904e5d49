package chart

import (
	"testing"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAggregate(t *testing.T) {
	values := []models.Value{
		{Date: day("2024-03-01"), Plan: 10, Fact: 8},
		{Date: day("2024-03-01"), Plan: 5, Fact: 2},
		{Date: day("2024-07-15"), Plan: 3, Fact: 4},
	}

	t.Run("should sum plan per date", func(t *testing.T) {
		data := Aggregate(values, models.ValueTypePlan)

		assert.Equal(t, models.ChartData{"2024-03-01": 15, "2024-07-15": 3}, data)
	})

	t.Run("should sum fact per date", func(t *testing.T) {
		data := Aggregate(values, models.ValueTypeFact)

		assert.Equal(t, models.ChartData{"2024-03-01": 10, "2024-07-15": 4}, data)
	})

	t.Run("should return an empty mapping without values", func(t *testing.T) {
		data := Aggregate(nil, models.ValueTypePlan)

		assert.NotNil(t, data)
		assert.Empty(t, data)
	})
}

func TestYearRange(t *testing.T) {
	from, to := YearRange(2024)

	assert.Equal(t, "2024-01-01", from.Format(models.DateLayout))
	assert.Equal(t, "2024-12-31", to.Format(models.DateLayout))
}
