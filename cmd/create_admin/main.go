package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/models"

	firebaseAuth "firebase.google.com/go/v4/auth"
)

func main() {
	email := flag.String("email", "admin@biblioteka.pl", "adres email konta admina")
	password := flag.String("password", "admin123", "hasło konta admina")
	name := flag.String("name", "Admin Systemu", "nazwa wyświetlana")
	flag.Parse()

	// Wczytaj zmienne środowiskowe
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	// Inicjalizacja Firebase
	client, err := firebase.InitFirebase()
	if err != nil {
		log.Fatalf("Błąd inicjalizacji Firebase: %v", err)
	}
	defer client.Close()

	fmt.Println("=== Tworzenie konta administratora ===")

	// Utwórz użytkownika w Firebase Auth
	params := (&firebaseAuth.UserToCreate{}).
		Email(*email).
		Password(*password).
		DisplayName(*name)

	firebaseUser, err := client.Auth.CreateUser(client.GetContext(), params)
	if err != nil {
		log.Fatalf("Błąd tworzenia użytkownika w Firebase Auth: %v", err)
	}

	fmt.Printf("✓ Utworzono konto Auth: %s (UID: %s)\n", *email, firebaseUser.UID)

	// Utwórz profil w Firestore z rolą admin - ID dokumentu równe UID
	profile := &models.UserProfile{
		ID:    firebaseUser.UID,
		Email: *email,
		Name:  *name,
		Role:  models.RoleAdmin,
	}

	if err := client.CreateProfile(profile); err != nil {
		// Konto Auth bez profilu jest bezużyteczne - sprzątamy
		if delErr := client.DeleteAuthUser(firebaseUser.UID); delErr != nil {
			log.Printf("Nie udało się usunąć konta Auth %s: %v", firebaseUser.UID, delErr)
		}
		log.Fatalf("Błąd tworzenia profilu w Firestore: %v", err)
	}

	fmt.Printf("✓ Utworzono profil Firestore: %s\n", profile.ID)
	fmt.Println("\n=== Konto administratora utworzone pomyślnie ===")
	fmt.Printf("Email: %s\n", *email)
	fmt.Printf("Rola: %s\n", profile.Role)
}
