package firebase

import (
	"fmt"
	"log"
	"time"

	"google.golang.org/api/iterator"

	"smart-library-api/internal/policy"
)

const (
	// ConfigCollection to nazwa kolekcji konfiguracji systemowej w Firestore.
	// Jeden dokument na klucz, wartości przechowywane jako tekst.
	ConfigCollection = "system_config"
)

// configEntry to pojedynczy wiersz konfiguracji klucz/wartość
type configEntry struct {
	Key   string `firestore:"key"`
	Value string `firestore:"value"`
}

// GetPolicy odczytuje politykę wypożyczeń z system_config. Każdy problem
// z odczytem lub parsowaniem kończy się wartościami domyślnymi dla danego
// pola - funkcja nigdy nie zwraca błędu do wywołującego.
func (c *Client) GetPolicy() policy.Policy {
	values := map[string]string{}

	iter := c.Firestore.Collection(ConfigCollection).Documents(c.ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Błąd odczytu konfiguracji, używam wartości domyślnych: %v", err)
			return policy.Default()
		}

		var entry configEntry
		if err := doc.DataTo(&entry); err != nil {
			continue
		}
		values[entry.Key] = entry.Value
	}

	return policy.FromConfig(values)
}

// SetConfigValue zapisuje pojedynczy klucz konfiguracji.
// ID dokumentu jest równe kluczowi, więc zapis jest idempotentny.
func (c *Client) SetConfigValue(key, value string) error {
	if key == "" {
		return fmt.Errorf("klucz konfiguracji nie może być pusty")
	}

	_, err := c.Firestore.Collection(ConfigCollection).Doc(key).Set(c.ctx, map[string]interface{}{
		"key":        key,
		"value":      value,
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania konfiguracji %s: %w", key, err)
	}

	return nil
}
