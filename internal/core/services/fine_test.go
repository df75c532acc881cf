package services

import (
	"testing"
	"time"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestComputeFine(t *testing.T) {
	due := date(2025, time.March, 10, 8, 0)

	tests := []struct {
		name       string
		price      int64
		condition  string
		dueDate    *time.Time
		returnDate time.Time
		wantAmount int64
		wantReason string
	}{
		{
			name:       "good on time",
			price:      50000,
			condition:  models.ConditionGood,
			dueDate:    &due,
			returnDate: date(2025, time.March, 9, 16, 0),
			wantAmount: 0,
			wantReason: "",
		},
		{
			name:       "good late evening on due date is free",
			price:      50000,
			condition:  models.ConditionGood,
			dueDate:    &due,
			returnDate: date(2025, time.March, 10, 23, 59),
			wantAmount: 0,
			wantReason: "",
		},
		{
			name:       "good one minute past midnight costs one day",
			price:      50000,
			condition:  models.ConditionGood,
			dueDate:    &due,
			returnDate: date(2025, time.March, 11, 0, 1),
			wantAmount: domain.LateFeePerDay,
			wantReason: "Trả sách trễ 1 ngày",
		},
		{
			name:       "good three days late",
			price:      50000,
			condition:  models.ConditionGood,
			dueDate:    &due,
			returnDate: date(2025, time.March, 13, 9, 0),
			wantAmount: 3 * domain.LateFeePerDay,
			wantReason: "Trả sách trễ 3 ngày",
		},
		{
			name:       "damaged on time is half price",
			price:      50000,
			condition:  models.ConditionDamaged,
			dueDate:    &due,
			returnDate: date(2025, time.March, 10, 9, 0),
			wantAmount: 25000,
			wantReason: "Sách bị hư hỏng",
		},
		{
			name:       "damaged rounds half up",
			price:      33333,
			condition:  models.ConditionDamaged,
			dueDate:    &due,
			returnDate: date(2025, time.March, 10, 9, 0),
			wantAmount: 16667,
			wantReason: "Sách bị hư hỏng",
		},
		{
			name:       "lost is double price",
			price:      50000,
			condition:  models.ConditionLost,
			dueDate:    &due,
			returnDate: date(2025, time.March, 10, 9, 0),
			wantAmount: 100000,
			wantReason: "Sách bị mất",
		},
		{
			name:       "damaged and late combine condition first",
			price:      50000,
			condition:  models.ConditionDamaged,
			dueDate:    &due,
			returnDate: date(2025, time.March, 12, 9, 0),
			wantAmount: 25000 + 2*domain.LateFeePerDay,
			wantReason: "Sách bị hư hỏng và Trả sách trễ 2 ngày",
		},
		{
			name:       "lost and late combine",
			price:      20000,
			condition:  models.ConditionLost,
			dueDate:    &due,
			returnDate: date(2025, time.March, 15, 9, 0),
			wantAmount: 40000 + 5*domain.LateFeePerDay,
			wantReason: "Sách bị mất và Trả sách trễ 5 ngày",
		},
		{
			name:       "nil due date skips lateness",
			price:      50000,
			condition:  models.ConditionDamaged,
			dueDate:    nil,
			returnDate: date(2025, time.March, 30, 9, 0),
			wantAmount: 25000,
			wantReason: "Sách bị hư hỏng",
		},
		{
			name:       "zero price lost is free but flagged",
			price:      0,
			condition:  models.ConditionLost,
			dueDate:    &due,
			returnDate: date(2025, time.March, 10, 9, 0),
			wantAmount: 0,
			wantReason: "Sách bị mất",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fine := ComputeFine(tt.price, tt.condition, tt.dueDate, tt.returnDate)
			assert.Equal(t, tt.wantAmount, fine.Amount)
			assert.Equal(t, tt.wantReason, fine.Reason)
		})
	}
}

func TestCalendarDaysLateCrossesMonth(t *testing.T) {
	due := date(2025, time.January, 31, 22, 0)
	got := calendarDaysLate(due, date(2025, time.February, 2, 1, 0))
	assert.Equal(t, 2, got)
}
