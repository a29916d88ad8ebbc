// Package policy zawiera reguły cyklu wypożyczenia: klasyfikację stanu
// wypożyczenia względem terminu zwrotu, naliczanie i sumowanie kar oraz
// konfigurację polityki wypożyczeń z twardymi wartościami domyślnymi.
//
// Porównania dat wykonywane są na częściach kalendarzowych (bez godziny)
// w stałej strefie czasowej biblioteki, a kwoty liczone są arytmetyką
// dziesiętną, żeby sumowanie kar nie wprowadzało dryfu zmiennoprzecinkowego.
package policy

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"smart-library-api/internal/models"
)

// Klucze konfiguracji w kolekcji system_config
const (
	KeyBorrowDurationDays = "borrow_duration_days"
	KeyGracePeriodDays    = "grace_period_days"
	KeyFinePerDay         = "fine_per_day"
	KeyMaxBooksPerStudent = "max_books_per_student"
	KeyReminderDays       = "reminder_days"
)

// DefaultTimezone to strefa czasowa, w której biblioteka liczy dni kalendarzowe
const DefaultTimezone = "Asia/Kolkata"

// Wartości domyślne używane gdy odczyt konfiguracji się nie powiedzie
const (
	defaultBorrowDurationDays = 14
	defaultGracePeriodDays    = 2
	defaultFinePerDay         = "5.0"
	defaultMaxBooksPerStudent = 3
	defaultReminderDays       = 3
)

// Policy to konfiguracja polityki wypożyczeń.
//
// ReminderDays zastępuje zaszyte wcześniej na sztywno 3-dniowe okno "due_soon"
// - jest to osobny, nazwany parametr, niezależny od GracePeriodDays, który
// dotyczy wyłącznie naliczania kar.
type Policy struct {
	BorrowDurationDays int             `json:"borrow_duration_days"`
	GracePeriodDays    int             `json:"grace_period_days"`
	FinePerDay         decimal.Decimal `json:"fine_per_day"`
	MaxBooksPerStudent int             `json:"max_books_per_student"`
	ReminderDays       int             `json:"reminder_days"`
}

// Default zwraca politykę z udokumentowanymi wartościami domyślnymi (14, 2, 5.0, 3)
func Default() Policy {
	return Policy{
		BorrowDurationDays: defaultBorrowDurationDays,
		GracePeriodDays:    defaultGracePeriodDays,
		FinePerDay:         decimal.RequireFromString(defaultFinePerDay),
		MaxBooksPerStudent: defaultMaxBooksPerStudent,
		ReminderDays:       defaultReminderDays,
	}
}

// FromConfig buduje politykę z par klucz/wartość odczytanych z system_config.
// Brakujące lub nieparsowalne wartości zastępowane są domyślnymi dla danego
// pola - funkcja nigdy nie zwraca błędu.
func FromConfig(values map[string]string) Policy {
	p := Default()

	if v, ok := values[KeyBorrowDurationDays]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.BorrowDurationDays = n
		}
	}
	if v, ok := values[KeyGracePeriodDays]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.GracePeriodDays = n
		}
	}
	if v, ok := values[KeyFinePerDay]; ok {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			p.FinePerDay = d
		}
	}
	if v, ok := values[KeyMaxBooksPerStudent]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.MaxBooksPerStudent = n
		}
	}
	if v, ok := values[KeyReminderDays]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.ReminderDays = n
		}
	}

	return p
}

// DueDate wyznacza termin zwrotu dla wypożyczenia rozpoczętego w borrowDate
func (p Policy) DueDate(borrowDate time.Time) time.Time {
	return borrowDate.AddDate(0, 0, p.BorrowDurationDays)
}

// BorrowState to wynik klasyfikacji aktywnego wypożyczenia
type BorrowState string

const (
	StateOverdue BorrowState = "overdue"  // Termin zwrotu minął
	StateDueSoon BorrowState = "due_soon" // Termin zwrotu w ciągu ReminderDays dni
	StateSafe    BorrowState = "safe"     // Termin zwrotu odległy
	StateUnknown BorrowState = "unknown"  // Brak poprawnej daty - klasyfikacja niemożliwa
)

// DaysPastDue liczy pełne dni kalendarzowe między "teraz" a terminem zwrotu
// w strefie loc. Część godzinowa obu dat jest ignorowana. Wynik dodatni
// oznacza opóźnienie, ujemny - dni pozostałe do terminu.
func DaysPastDue(dueDate, now time.Time, loc *time.Location) int {
	d := civilDate(dueDate, loc)
	n := civilDate(now, loc)
	return int(n.Sub(d).Hours() / 24)
}

// Classify klasyfikuje wypożyczenie względem terminu zwrotu.
// Zwraca stan oraz liczbę dni pozostałych do terminu (ujemną przy opóźnieniu).
// Dla zerowej daty terminu zwraca StateUnknown - klasyfikacja nigdy nie
// przerywa obsługi żądania.
func (p Policy) Classify(dueDate, now time.Time, loc *time.Location) (BorrowState, int) {
	if dueDate.IsZero() {
		return StateUnknown, 0
	}

	daysPast := DaysPastDue(dueDate, now, loc)
	daysRemaining := -daysPast

	switch {
	case daysPast > 0:
		return StateOverdue, daysRemaining
	case daysPast >= -p.ReminderDays:
		return StateDueSoon, daysRemaining
	default:
		return StateSafe, daysRemaining
	}
}

// DynamicFine liczy karę narosłą "na bieżąco" dla aktywnego wypożyczenia:
// dni opóźnienia razy stawka dzienna. Kara nie jest jeszcze zapisana jako
// wiersz w kolekcji fines.
func (p Policy) DynamicFine(dueDate, now time.Time, loc *time.Location) decimal.Decimal {
	if dueDate.IsZero() {
		return decimal.Zero
	}

	daysPast := DaysPastDue(dueDate, now, loc)
	if daysPast <= 0 {
		return decimal.Zero
	}

	return p.FineForDays(daysPast)
}

// FineForDays liczy kwotę kary za zadaną liczbę dni opóźnienia
func (p Policy) FineForDays(daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return p.FinePerDay.Mul(decimal.NewFromInt(int64(daysOverdue)))
}

// PastGracePeriod sprawdza czy opóźnienie przekroczyło okres karencji,
// po którym zadanie reminders tworzy wiersz kary
func (p Policy) PastGracePeriod(daysOverdue int) bool {
	return daysOverdue > p.GracePeriodDays
}

// ReturnStatus to wynik klasyfikacji zakończonego wypożyczenia
type ReturnStatus string

const (
	ReturnOnTime  ReturnStatus = "on_time"
	ReturnLate    ReturnStatus = "late"
	ReturnUnknown ReturnStatus = "unknown" // Brakująca lub niepoprawna data - nie zgadujemy
)

// ClassifyReturn ocenia czy zwrot nastąpił w terminie. Porównanie jest
// chwilowe (nie kalendarzowe): zwrot sekundę po terminie to już "late".
// Przy brakujących datach zwraca ReturnUnknown zamiast zgadywać.
func ClassifyReturn(returnDate *time.Time, dueDate time.Time) ReturnStatus {
	if returnDate == nil || returnDate.IsZero() || dueDate.IsZero() {
		return ReturnUnknown
	}
	if returnDate.After(dueDate) {
		return ReturnLate
	}
	return ReturnOnTime
}

// FineSummary to zagregowany stan kar użytkownika
type FineSummary struct {
	DynamicFine   decimal.Decimal // Kary narosłe, jeszcze nie zapisane
	PersistedFine decimal.Decimal // Suma zapisanych kar o statusie pending
	Total         decimal.Decimal // DynamicFine + PersistedFine
}

// AggregateFines liczy łączną zaległość użytkownika: suma zapisanych kar
// pending plus kary dynamiczne z aktualnie wypożyczonych pozycji.
// Kary zapłacone nie wchodzą do sumy.
func (p Policy) AggregateFines(borrows []*models.Borrow, fines []*models.Fine, now time.Time, loc *time.Location) FineSummary {
	s := FineSummary{
		DynamicFine:   decimal.Zero,
		PersistedFine: decimal.Zero,
	}

	for _, b := range borrows {
		if !b.IsActive() {
			continue
		}
		s.DynamicFine = s.DynamicFine.Add(p.DynamicFine(b.DueDate, now, loc))
	}

	for _, f := range fines {
		if f.Status == models.FineStatusPending {
			s.PersistedFine = s.PersistedFine.Add(decimal.NewFromFloat(f.Amount))
		}
	}

	s.Total = s.DynamicFine.Add(s.PersistedFine)
	return s
}

// LoadLocation ładuje strefę czasową biblioteki; przy błędzie wraca do UTC,
// żeby klasyfikacja pozostała totalna
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// civilDate rzutuje znacznik czasu na datę kalendarzową odczytaną w strefie
// loc i znormalizowaną do UTC. Różnica dwóch takich dat jest zawsze
// wielokrotnością 24h, także wokół zmiany czasu letniego.
func civilDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
