package services

import (
	"testing"
	"time"

	"fanbase_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestPeriodEnd_MonthlyClampsToEndOfMonth(t *testing.T) {
	t.Parallel()

	// 31 января + месяц = 29 февраля (високосный год), а не 2-3 марта
	end := PeriodEnd(date(2024, time.January, 31), models.PlanIntervalMonthly)
	assert.Equal(t, date(2024, time.February, 29), end)

	// Невисокосный год: прижатие к 28 февраля
	end = PeriodEnd(date(2023, time.January, 31), models.PlanIntervalMonthly)
	assert.Equal(t, date(2023, time.February, 28), end)

	// Обычный день не прижимается
	end = PeriodEnd(date(2024, time.March, 15), models.PlanIntervalMonthly)
	assert.Equal(t, date(2024, time.April, 15), end)

	// 31 августа -> 30 сентября
	end = PeriodEnd(date(2024, time.August, 31), models.PlanIntervalMonthly)
	assert.Equal(t, date(2024, time.September, 30), end)
}

func TestPeriodEnd_Yearly(t *testing.T) {
	t.Parallel()

	end := PeriodEnd(date(2023, time.March, 1), models.PlanIntervalYearly)
	assert.Equal(t, date(2024, time.March, 1), end)

	// 29 февраля високосного года -> 28 февраля следующего
	end = PeriodEnd(date(2024, time.February, 29), models.PlanIntervalYearly)
	assert.Equal(t, date(2025, time.February, 28), end)
}

func TestPeriodEnd_UnknownIntervalDefaultsTo30Days(t *testing.T) {
	t.Parallel()

	start := date(2024, time.January, 31)
	end := PeriodEnd(start, models.PlanInterval("weekly"))
	assert.Equal(t, start.AddDate(0, 0, 30), end)

	end = PeriodEnd(start, "")
	assert.Equal(t, start.AddDate(0, 0, 30), end)
}

func TestPeriodEnd_PreservesTimeOfDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.May, 10, 23, 59, 58, 0, time.UTC)
	end := PeriodEnd(start, models.PlanIntervalMonthly)
	assert.Equal(t, time.Date(2024, time.June, 10, 23, 59, 58, 0, time.UTC), end)
}
