package main

import (
	"log"

	"github.com/joho/godotenv"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/models"
)

func main() {
	// Wczytaj zmienne środowiskowe
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	// Inicjalizacja Firebase
	fbClient, err := firebase.InitFirebase()
	if err != nil {
		log.Fatalf("Błąd inicjalizacji Firebase: %v", err)
	}
	defer fbClient.Close()

	log.Println("Dodawanie przykładowych książek do katalogu...")

	books := []models.Book{
		{
			ISBN:        "978-0-262-03384-8",
			Title:       "Introduction to Algorithms",
			Author:      "Thomas H. Cormen",
			Subject:     "Algorytmy i struktury danych",
			Category:    "Podręcznik",
			Department:  "Informatyka",
			Semester:    3,
			Description: "Klasyczny podręcznik algorytmiki: sortowanie, grafy, programowanie dynamiczne, struktury danych.",
			TotalCopies: 5,
		},
		{
			ISBN:        "978-0-13-468599-1",
			Title:       "Computer Networking: A Top-Down Approach",
			Author:      "James F. Kurose",
			Subject:     "Sieci komputerowe",
			Category:    "Podręcznik",
			Department:  "Informatyka",
			Semester:    4,
			Description: "Warstwowy przegląd sieci komputerowych od aplikacji po warstwę fizyczną.",
			TotalCopies: 4,
		},
		{
			ISBN:        "978-0-07-352332-3",
			Title:       "Database System Concepts",
			Author:      "Abraham Silberschatz",
			Subject:     "Bazy danych",
			Category:    "Podręcznik",
			Department:  "Informatyka",
			Semester:    4,
			Description: "Model relacyjny, SQL, transakcje, indeksy i przetwarzanie zapytań.",
			TotalCopies: 3,
		},
		{
			ISBN:        "978-0-321-57351-3",
			Title:       "Structure and Interpretation of Computer Programs",
			Author:      "Harold Abelson",
			Subject:     "Podstawy programowania",
			Category:    "Podręcznik",
			Department:  "Informatyka",
			Semester:    1,
			Description: "Abstrakcja, rekurencja i modele obliczeń na przykładzie języka Scheme.",
			TotalCopies: 2,
		},
		{
			ISBN:        "978-0-471-48885-4",
			Title:       "Advanced Engineering Mathematics",
			Author:      "Erwin Kreyszig",
			Subject:     "Matematyka inżynierska",
			Category:    "Podręcznik",
			Department:  "Matematyka",
			Semester:    2,
			Description: "Równania różniczkowe, algebra liniowa, analiza zespolona i metody numeryczne.",
			TotalCopies: 6,
		},
		{
			ISBN:        "978-1-119-45416-8",
			Title:       "Fundamentals of Physics",
			Author:      "David Halliday",
			Subject:     "Fizyka",
			Category:    "Podręcznik",
			Department:  "Fizyka",
			Semester:    1,
			Description: "Mechanika, termodynamika, elektromagnetyzm i optyka z zadaniami.",
			TotalCopies: 4,
		},
		{
			ISBN:        "978-0-13-235088-4",
			Title:       "Clean Code",
			Author:      "Robert C. Martin",
			Subject:     "Inżynieria oprogramowania",
			Category:    "Lektura uzupełniająca",
			Department:  "Informatyka",
			Semester:    5,
			Description: "Praktyki pisania czytelnego i utrzymywalnego kodu.",
			TotalCopies: 3,
		},
		{
			ISBN:        "978-0-262-53305-8",
			Title:       "Deep Learning",
			Author:      "Ian Goodfellow",
			Subject:     "Uczenie maszynowe",
			Category:    "Podręcznik",
			Department:  "Informatyka",
			Semester:    6,
			Description: "Sieci neuronowe, optymalizacja i modele generatywne.",
			TotalCopies: 2,
		},
	}

	successCount := 0
	for _, book := range books {
		if err := fbClient.CreateBook(&book); err != nil {
			log.Printf("❌ Błąd dodawania książki '%s': %v", book.Title, err)
		} else {
			log.Printf("✓ Dodano: %s - %s", book.Title, book.Author)
			successCount++
		}
	}

	log.Printf("\n✅ Pomyślnie dodano %d/%d książek do katalogu", successCount, len(books))
}
