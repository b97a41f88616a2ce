package services

import (
	"time"

	"fanbase_backend/internal/models"
)

// PeriodEnd вычисляет конец оплаченного периода подписки.
//
// monthly и yearly - календарная арифметика с прижатием дня к концу
// целевого месяца: 31 января + месяц = 29 февраля (високосный год),
// а не фиксированные 30 дней. Неизвестный или пустой интервал -
// защитный дефолт: ровно +30 дней.
func PeriodEnd(start time.Time, interval models.PlanInterval) time.Time {
	switch interval {
	case models.PlanIntervalMonthly:
		return addMonthsClamped(start, 1)
	case models.PlanIntervalYearly:
		return addMonthsClamped(start, 12)
	default:
		return start.AddDate(0, 0, 30)
	}
}

// addMonthsClamped сдвигает дату на months месяцев вперед, прижимая
// день к последнему дню целевого месяца. Стандартный AddDate здесь
// не подходит: он нормализует "31 февраля" в начало марта.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	h, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}
