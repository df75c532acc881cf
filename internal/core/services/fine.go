package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"
)

// ComputeFine assesses the penalty for one returned copy. The amount is
// the sum of a condition component and a lateness component:
//
//	damaged  → half the rental price, rounded to the nearest dong
//	lost     → twice the rental price
//	late     → domain.LateFeePerDay per full calendar day past due
//
// Lateness counts calendar days: both dates are truncated to local
// midnight before comparing, so returning at 23:59 on the due date
// costs nothing and 00:01 the next day costs one day.
// The reason lists the condition part first, joined with " và ".
func ComputeFine(rentalPrice int64, condition string, dueDate *time.Time, returnDate time.Time) domain.Fine {
	var amount int64
	var reasons []string

	switch condition {
	case models.ConditionDamaged:
		amount += int64(math.Round(float64(rentalPrice) * 0.5))
		reasons = append(reasons, "Sách bị hư hỏng")
	case models.ConditionLost:
		amount += rentalPrice * 2
		reasons = append(reasons, "Sách bị mất")
	}

	if dueDate != nil {
		if daysLate := calendarDaysLate(*dueDate, returnDate); daysLate > 0 {
			amount += int64(daysLate) * domain.LateFeePerDay
			reasons = append(reasons, fmt.Sprintf("Trả sách trễ %d ngày", daysLate))
		}
	}

	return domain.Fine{
		Amount: amount,
		Reason: strings.Join(reasons, " và "),
	}
}

// calendarDaysLate counts full calendar days between due date and
// return date, truncating both to midnight first.
func calendarDaysLate(dueDate, returnDate time.Time) int {
	due := truncateToDay(dueDate)
	returned := truncateToDay(returnDate)
	if !returned.After(due) {
		return 0
	}
	return int(returned.Sub(due).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
