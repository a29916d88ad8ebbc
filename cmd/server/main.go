package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/handlers"
	authmw "smart-library-api/internal/middleware"
	"smart-library-api/internal/policy"
)

func main() {
	// Wczytaj zmienne środowiskowe z pliku .env
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	// Pobierz port z zmiennych środowiskowych lub użyj domyślnego
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Strefa czasowa biblioteki - w niej liczone są dni kalendarzowe
	loc := policy.LoadLocation(os.Getenv("TIMEZONE"))
	log.Printf("Strefa czasowa biblioteki: %s", loc)

	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")

	// Inicjalizacja Firebase
	fbClient, err := firebase.InitFirebase()
	if err != nil {
		log.Fatalf("Błąd inicjalizacji Firebase: %v", err)
	}
	defer fbClient.Close()
	log.Println("Firebase zainicjalizowany pomyślnie")

	// Inicjalizacja routera Chi
	r := chi.NewRouter()

	// Middleware do logowania requestów
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Inicjalizacja handlerów
	authHandler := handlers.NewAuthHandler(fbClient)
	studentHandler := handlers.NewStudentHandler(fbClient, loc)
	booksHandler := handlers.NewBooksHandler(fbClient)
	adminHandler := handlers.NewAdminHandler(fbClient, loc)
	resourcesHandler := handlers.NewResourcesHandler(fbClient, bucketName)
	rulesHandler := handlers.NewRulesHandler(fbClient)

	// Sonda żywotności - publiczna
	r.Get("/health", handlers.HandleHealth)
	r.Get("/api/health", handlers.HandleHealth)

	// Routy dla autoryzacji - publiczne
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/validate", authHandler.HandleValidate)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// Reguły wypożyczeń - publiczne, zawsze odpowiadają
	r.Get("/api/rules/borrow-policy", rulesHandler.ShowBorrowPolicy)

	// Panel studenta (wymaga tokena i roli student)
	r.Route("/api/student", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware)
		r.Use(authmw.RequireStudent)

		r.Get("/dashboard", studentHandler.ShowDashboard)

		// Katalog i wypożyczenia
		r.Get("/books/search", booksHandler.SearchBooks)
		r.Get("/books/current", studentHandler.ShowCurrentBooks)
		r.Get("/books/history", studentHandler.ShowHistory)
		r.Get("/books/{book_id}", booksHandler.ShowBook)
		r.Post("/books/{book_id}/borrow", studentHandler.BorrowBook)
		r.Post("/books/{book_id}/notify", booksHandler.SubscribeAvailability)

		// Powiadomienia i kary
		r.Get("/notifications", studentHandler.ShowNotifications)
		r.Put("/notifications/{notification_id}/read", studentHandler.MarkNotificationRead)
		r.Get("/fines", studentHandler.ShowFines)

		// Profil
		r.Get("/profile", studentHandler.ShowProfile)
		r.Put("/profile", studentHandler.UpdateProfile)
		r.Get("/profile/request", studentHandler.ShowProfileRequest)
		r.Post("/profile/request", studentHandler.SubmitProfileRequest)
	})

	// Katalog - odczyt dla każdego zalogowanego, niezależnie od roli
	r.Route("/api/books", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware)
		r.Get("/search", booksHandler.SearchBooks)
		r.Get("/{book_id}", booksHandler.ShowBook)
		r.Post("/{book_id}/notify", booksHandler.SubscribeAvailability)
	})

	// Materiały dydaktyczne - odczyt dla każdego zalogowanego
	r.Route("/api/resources", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware)
		r.Get("/", resourcesHandler.ListResources)
		r.Get("/{resource_id}/download", resourcesHandler.DownloadResource)
	})

	// Panel administratora (wymaga tokena i roli admin)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authmw.AuthMiddleware)
		r.Use(authmw.RequireAdmin)

		r.Get("/dashboard", adminHandler.ShowDashboard)
		r.Get("/logs", adminHandler.ShowLogs)

		// Zarządzanie katalogiem
		r.Get("/books", adminHandler.ListBooks)
		r.Post("/books", adminHandler.CreateBook)
		r.Put("/books/{book_id}", adminHandler.UpdateBook)
		r.Delete("/books/{book_id}", adminHandler.DeleteBook)

		// Zwroty
		r.Post("/borrows/{borrow_id}/return", adminHandler.ReturnBook)

		// Studenci
		r.Get("/students", adminHandler.ListStudents)
		r.Get("/students/{student_id}", adminHandler.ShowStudent)

		// Kary i polityka wypożyczeń
		r.Get("/fines", adminHandler.ListFines)
		r.Put("/fines/config", adminHandler.UpdatePolicy)
		r.Put("/fines/{fine_id}/pay", adminHandler.MarkFinePaid)

		// Ogłoszenia
		r.Post("/notifications/broadcast", adminHandler.BroadcastNotification)

		// Wnioski o zmianę profilu
		r.Get("/profile/requests", adminHandler.ListProfileRequests)
		r.Post("/profile/requests/{request_id}/{action}", adminHandler.ProcessProfileRequest)

		// Materiały dydaktyczne
		r.Post("/resources", resourcesHandler.UploadResource)
		r.Delete("/resources/{resource_id}", resourcesHandler.DeleteResource)
	})

	// Start serwera
	log.Printf("Serwer uruchomiony na porcie %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
