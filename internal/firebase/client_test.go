package firebase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStoreGetError(t *testing.T) {
	t.Run("brak dokumentu to sentinel ErrNotFound", func(t *testing.T) {
		err := storeGetError(status.Error(codes.NotFound, "document missing"), "powiadomienia")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	// Chwilowa niedostępność nie może udawać braku rekordu - handler
	// zmapowałby ją na 404 zamiast 500
	t.Run("inne kody gRPC są opakowywane", func(t *testing.T) {
		cause := status.Error(codes.Unavailable, "backend overloaded")
		err := storeGetError(cause, "powiadomienia")

		assert.False(t, errors.Is(err, ErrNotFound))
		assert.ErrorContains(t, err, "błąd pobierania powiadomienia")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("zwykłe błędy są opakowywane", func(t *testing.T) {
		cause := errors.New("awaria sieci")
		err := storeGetError(cause, "wniosku")

		assert.False(t, errors.Is(err, ErrNotFound))
		assert.ErrorIs(t, err, cause)
	})
}
