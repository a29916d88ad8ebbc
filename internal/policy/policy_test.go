package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-library-api/internal/models"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, 14, p.BorrowDurationDays)
	assert.Equal(t, 2, p.GracePeriodDays)
	assert.True(t, p.FinePerDay.Equal(decimal.RequireFromString("5.0")))
	assert.Equal(t, 3, p.MaxBooksPerStudent)
	assert.Equal(t, 3, p.ReminderDays)
}

func TestFromConfig(t *testing.T) {
	t.Run("pusta mapa daje wartości domyślne", func(t *testing.T) {
		p := FromConfig(map[string]string{})

		assert.Equal(t, Default(), p)
	})

	t.Run("nieparsowalne wartości zastępowane są domyślnymi", func(t *testing.T) {
		p := FromConfig(map[string]string{
			KeyBorrowDurationDays: "czternaście",
			KeyGracePeriodDays:    "",
			KeyFinePerDay:         "not-a-number",
			KeyMaxBooksPerStudent: "-1",
		})

		assert.Equal(t, Default(), p)
	})

	t.Run("poprawne wartości nadpisują domyślne", func(t *testing.T) {
		p := FromConfig(map[string]string{
			KeyBorrowDurationDays: "21",
			KeyGracePeriodDays:    "0",
			KeyFinePerDay:         "2.50",
			KeyMaxBooksPerStudent: "5",
			KeyReminderDays:       "7",
		})

		assert.Equal(t, 21, p.BorrowDurationDays)
		assert.Equal(t, 0, p.GracePeriodDays)
		assert.True(t, p.FinePerDay.Equal(decimal.RequireFromString("2.50")))
		assert.Equal(t, 5, p.MaxBooksPerStudent)
		assert.Equal(t, 7, p.ReminderDays)
	})
}

func TestClassify(t *testing.T) {
	loc := testLocation(t)
	p := Default()

	now := time.Date(2025, 3, 10, 15, 30, 0, 0, loc)

	cases := []struct {
		name     string
		dueDate  time.Time
		expected BorrowState
	}{
		{"dzień po terminie to overdue", now.AddDate(0, 0, -1), StateOverdue},
		{"termin dzisiaj to due_soon", now, StateDueSoon},
		{"trzy dni do terminu to due_soon", now.AddDate(0, 0, 3), StateDueSoon},
		{"cztery dni do terminu to safe", now.AddDate(0, 0, 4), StateSafe},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, _ := p.Classify(tc.dueDate, now, loc)
			assert.Equal(t, tc.expected, state)
		})
	}

	t.Run("godzina nie wpływa na klasyfikację", func(t *testing.T) {
		// Termin dziś o 23:59, "teraz" 15:30 - różnica dni kalendarzowych to 0
		due := time.Date(2025, 3, 10, 23, 59, 0, 0, loc)
		state, remaining := p.Classify(due, now, loc)

		assert.Equal(t, StateDueSoon, state)
		assert.Equal(t, 0, remaining)
	})

	t.Run("zerowa data daje unknown", func(t *testing.T) {
		state, _ := p.Classify(time.Time{}, now, loc)
		assert.Equal(t, StateUnknown, state)
	})

	t.Run("klasyfikacja jest totalna", func(t *testing.T) {
		for days := -30; days <= 30; days++ {
			state, _ := p.Classify(now.AddDate(0, 0, days), now, loc)
			assert.Contains(t, []BorrowState{StateOverdue, StateDueSoon, StateSafe}, state)
		}
	})
}

func TestDaysPastDue(t *testing.T) {
	loc := testLocation(t)

	t.Run("porównanie w strefie biblioteki, nie UTC", func(t *testing.T) {
		// 2025-03-10 01:00 w Kolkacie to jeszcze 2025-03-09 w UTC.
		// Termin 2025-03-09 ma być dzień po terminie, choć w UTC daty są równe.
		now := time.Date(2025, 3, 10, 1, 0, 0, 0, loc)
		due := time.Date(2025, 3, 9, 10, 0, 0, 0, loc)

		assert.Equal(t, 1, DaysPastDue(due.UTC(), now.UTC(), loc))
	})

	t.Run("zmiana czasu letniego nie skraca doby", func(t *testing.T) {
		// Noc 29/30 marca 2025 w Warszawie ma 23 godziny - różnica dat
		// kalendarzowych i tak musi wynosić pełne 2 dni.
		warsaw, err := time.LoadLocation("Europe/Warsaw")
		require.NoError(t, err)

		due := time.Date(2025, 3, 29, 12, 0, 0, 0, warsaw)
		now := time.Date(2025, 3, 31, 12, 0, 0, 0, warsaw)

		assert.Equal(t, 2, DaysPastDue(due, now, warsaw))
	})

	t.Run("zmiana czasu zimowego nie wydłuża doby", func(t *testing.T) {
		// Noc 25/26 października 2025 w Warszawie ma 25 godzin.
		warsaw, err := time.LoadLocation("Europe/Warsaw")
		require.NoError(t, err)

		due := time.Date(2025, 10, 25, 12, 0, 0, 0, warsaw)
		now := time.Date(2025, 10, 27, 12, 0, 0, 0, warsaw)

		assert.Equal(t, 2, DaysPastDue(due, now, warsaw))
	})
}

func TestDynamicFine(t *testing.T) {
	loc := testLocation(t)
	p := Default()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	t.Run("pięć dni opóźnienia przy stawce 5 daje 25", func(t *testing.T) {
		due := now.AddDate(0, 0, -5)
		fine := p.DynamicFine(due, now, loc)

		assert.True(t, fine.Equal(decimal.NewFromInt(25)), "oczekiwano 25, jest %s", fine)
	})

	t.Run("brak opóźnienia to zero", func(t *testing.T) {
		assert.True(t, p.DynamicFine(now, now, loc).IsZero())
		assert.True(t, p.DynamicFine(now.AddDate(0, 0, 2), now, loc).IsZero())
	})

	t.Run("suma wielu kar nie dryfuje", func(t *testing.T) {
		// 0.1 za dzień przez 10 pozycji po 3 dni - dokładnie 3.00
		p := Default()
		p.FinePerDay = decimal.RequireFromString("0.1")

		total := decimal.Zero
		for i := 0; i < 10; i++ {
			total = total.Add(p.FineForDays(3))
		}

		assert.True(t, total.Equal(decimal.NewFromInt(3)), "oczekiwano 3, jest %s", total)
	})
}

func TestClassifyReturn(t *testing.T) {
	loc := testLocation(t)
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	t.Run("zwrot dokładnie w terminie to on_time", func(t *testing.T) {
		ret := due
		assert.Equal(t, ReturnOnTime, ClassifyReturn(&ret, due))
	})

	t.Run("zwrot sekundę po terminie to late", func(t *testing.T) {
		ret := due.Add(time.Second)
		assert.Equal(t, ReturnLate, ClassifyReturn(&ret, due))
	})

	t.Run("brak daty zwrotu to unknown", func(t *testing.T) {
		assert.Equal(t, ReturnUnknown, ClassifyReturn(nil, due))
	})

	t.Run("zerowe daty to unknown", func(t *testing.T) {
		zero := time.Time{}
		assert.Equal(t, ReturnUnknown, ClassifyReturn(&zero, due))
		ret := due
		assert.Equal(t, ReturnUnknown, ClassifyReturn(&ret, time.Time{}))
	})
}

func TestAggregateFines(t *testing.T) {
	loc := testLocation(t)
	p := Default()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	t.Run("jedna pozycja 5 dni po terminie bez zapisanych kar", func(t *testing.T) {
		borrows := []*models.Borrow{
			{Status: models.BorrowStatusBorrowed, DueDate: now.AddDate(0, 0, -5)},
		}

		s := p.AggregateFines(borrows, nil, now, loc)

		assert.True(t, s.DynamicFine.Equal(decimal.NewFromInt(25)))
		assert.True(t, s.PersistedFine.IsZero())
		assert.True(t, s.Total.Equal(decimal.NewFromInt(25)))
	})

	t.Run("kary zapłacone nie wchodzą do sumy", func(t *testing.T) {
		fines := []*models.Fine{
			{Status: models.FineStatusPending, Amount: 10},
			{Status: models.FineStatusPaid, Amount: 100},
		}

		s := p.AggregateFines(nil, fines, now, loc)

		assert.True(t, s.PersistedFine.Equal(decimal.NewFromInt(10)))
		assert.True(t, s.Total.Equal(decimal.NewFromInt(10)))
	})

	t.Run("zwrócone wypożyczenia nie naliczają kary dynamicznej", func(t *testing.T) {
		borrows := []*models.Borrow{
			{Status: models.BorrowStatusReturned, DueDate: now.AddDate(0, 0, -5)},
		}

		s := p.AggregateFines(borrows, nil, now, loc)

		assert.True(t, s.Total.IsZero())
	})
}

func TestLoadLocation(t *testing.T) {
	t.Run("pusta nazwa daje strefę domyślną", func(t *testing.T) {
		assert.Equal(t, "Asia/Kolkata", LoadLocation("").String())
	})

	t.Run("nieznana strefa wraca do UTC", func(t *testing.T) {
		assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus_Mons"))
	})
}
