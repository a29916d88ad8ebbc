package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/models"
	"smart-library-api/internal/policy"
)

// Jednorazowe zadanie przypomnień, uruchamiane z zewnętrznego harmonogramu
// (cron). Przegląda otwarte wypożyczenia: oznacza przeterminowane, tworzy
// kary po okresie karencji, wysyła przypomnienia o zbliżającym się terminie
// i powiadamia oczekujących o dostępnych książkach.
func main() {
	// Wczytaj zmienne środowiskowe
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	loc := policy.LoadLocation(os.Getenv("TIMEZONE"))

	// Inicjalizacja Firebase
	fbClient, err := firebase.InitFirebase()
	if err != nil {
		log.Fatalf("Błąd inicjalizacji Firebase: %v", err)
	}
	defer fbClient.Close()

	p := fbClient.GetPolicy()
	now := time.Now()

	log.Println("=== Zadanie przypomnień: start ===")

	borrows, err := fbClient.GetActiveBorrows()
	if err != nil {
		log.Fatalf("Błąd pobierania aktywnych wypożyczeń: %v", err)
	}
	log.Printf("Otwarte wypożyczenia: %d", len(borrows))

	var marked, finesCreated, remindersSent int

	for _, b := range borrows {
		state, _ := p.Classify(b.DueDate, now, loc)

		switch state {
		case policy.StateOverdue:
			daysOverdue := policy.DaysPastDue(b.DueDate, now, loc)
			fine := p.FineForDays(daysOverdue)

			// Przejście borrowed -> overdue z aktualizacją naliczonej kary
			if err := fbClient.MarkBorrowOverdue(b.ID, fine.InexactFloat64()); err != nil {
				log.Printf("Błąd oznaczania wypożyczenia %s jako przeterminowanego: %v", b.ID, err)
				continue
			}
			if b.Status != models.BorrowStatusOverdue {
				marked++
				n := &models.Notification{
					UserID:   b.UserID,
					BorrowID: b.ID,
					Type:     models.NotificationOverdue,
					Title:    "Termin zwrotu minął",
					Message:  fmt.Sprintf("Termin zwrotu książki \"%s\" minął %d dni temu. Naliczana kara: %s", b.BookTitle, daysOverdue, fine.StringFixed(2)),
				}
				if err := fbClient.CreateNotification(n); err != nil {
					log.Printf("Błąd powiadomienia o przeterminowaniu dla %s: %v", b.UserID, err)
				}
			}

			// Kara trafia do kolekcji fines dopiero po okresie karencji,
			// dokładnie raz na wypożyczenie
			if p.PastGracePeriod(daysOverdue) {
				exists, err := fbClient.HasFineForBorrow(b.ID)
				if err != nil {
					log.Printf("Błąd sprawdzania kary dla wypożyczenia %s: %v", b.ID, err)
					continue
				}
				if !exists {
					fineRow := &models.Fine{
						UserID:      b.UserID,
						BorrowID:    b.ID,
						Amount:      fine.InexactFloat64(),
						DaysOverdue: daysOverdue,
						Status:      models.FineStatusPending,
					}
					if err := fbClient.CreateFine(fineRow); err != nil {
						log.Printf("Błąd tworzenia kary dla wypożyczenia %s: %v", b.ID, err)
						continue
					}
					finesCreated++
				}
			}

		case policy.StateDueSoon:
			// Jedno przypomnienie dziennie na wypożyczenie
			sent, err := fbClient.HasDueSoonNotificationToday(b.UserID, b.ID, now, loc)
			if err != nil {
				log.Printf("Błąd sprawdzania przypomnień dla %s: %v", b.UserID, err)
				continue
			}
			if sent {
				continue
			}

			if err := fbClient.CreateNotification(models.NewDueSoonNotification(b, loc)); err != nil {
				log.Printf("Błąd przypomnienia dla %s: %v", b.UserID, err)
				continue
			}
			remindersSent++
		}
	}

	// Powiadomienia o dostępności dla subskrypcji, których książki
	// zwolniły się poza ścieżką zwrotu (np. po korekcie liczby egzemplarzy)
	availabilitySent := notifyAvailableBooks(fbClient)

	log.Printf("Oznaczono jako przeterminowane: %d", marked)
	log.Printf("Utworzono kar: %d", finesCreated)
	log.Printf("Wysłano przypomnień: %d", remindersSent)
	log.Printf("Powiadomień o dostępności: %d", availabilitySent)
	log.Println("=== Zadanie przypomnień: koniec ===")
}

// notifyAvailableBooks przegląda oczekujące subskrypcje i powiadamia
// studentów, których książki są już dostępne
func notifyAvailableBooks(fbClient *firebase.Client) int {
	subs, err := fbClient.ListPendingSubscriptions()
	if err != nil {
		log.Printf("Błąd pobierania subskrypcji: %v", err)
		return 0
	}

	sent := 0
	for _, sub := range subs {
		book, err := fbClient.GetBook(sub.BookID)
		if err != nil {
			if errors.Is(err, firebase.ErrNotFound) {
				// Książka usunięta z katalogu - subskrypcja nie ma już sensu
				if err := fbClient.MarkSubscriptionNotified(sub.ID); err != nil {
					log.Printf("Błąd zamykania subskrypcji %s: %v", sub.ID, err)
				}
				continue
			}
			log.Printf("Błąd pobierania książki %s: %v", sub.BookID, err)
			continue
		}

		if !book.IsAvailable() {
			continue
		}

		n := &models.Notification{
			UserID:  sub.UserID,
			Type:    models.NotificationAvailability,
			Title:   "Książka znów dostępna",
			Message: fmt.Sprintf("Książka \"%s\" jest znów dostępna do wypożyczenia", book.Title),
		}
		if err := fbClient.CreateNotification(n); err != nil {
			log.Printf("Błąd powiadomienia o dostępności dla %s: %v", sub.UserID, err)
			continue
		}
		if err := fbClient.MarkSubscriptionNotified(sub.ID); err != nil {
			log.Printf("Błąd zamykania subskrypcji %s: %v", sub.ID, err)
		}
		sent++
	}

	return sent
}
