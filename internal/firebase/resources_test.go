package firebase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"małe litery i myślniki", "Data Structures", "data-structures"},
		{"podkreślenia na myślniki", "machine_learning", "machine-learning"},
		{"znaki specjalne wycinane", "C++ / Sieci (2024)!", "c-sieci-2024"},
		{"ciąg separatorów to jeden myślnik", "bazy  danych -_- sql", "bazy-danych-sql"},
		{"bez myślników na brzegach", " - Fizyka - ", "fizyka"},
		{"pusty tekst dostaje zastępczy slug", "", "inne"},
		{"same znaki specjalne", "???", "inne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.input))
		})
	}
}

func TestResourceObjectPath(t *testing.T) {
	t.Run("ścieżka zawiera przedmiot i semestr", func(t *testing.T) {
		path := ResourceObjectPath("Bazy Danych", 4, "wyklad-01.PDF")

		assert.True(t, strings.HasPrefix(path, "resources/bazy-danych/sem-4/"), "ścieżka: %s", path)
		assert.True(t, strings.HasSuffix(path, ".pdf"), "rozszerzenie powinno być małymi literami: %s", path)
	})

	t.Run("oryginalna nazwa pliku nie trafia do ścieżki", func(t *testing.T) {
		path := ResourceObjectPath("Fizyka", 1, "sciaga sesja TAJNE.pdf")
		assert.NotContains(t, path, "sciaga")
		assert.NotContains(t, path, " ")
	})

	t.Run("kolejne wywołania dają różne ścieżki", func(t *testing.T) {
		a := ResourceObjectPath("Fizyka", 1, "notatki.pdf")
		b := ResourceObjectPath("Fizyka", 1, "notatki.pdf")
		assert.NotEqual(t, a, b)
	})

	t.Run("plik bez rozszerzenia", func(t *testing.T) {
		path := ResourceObjectPath("Fizyka", 2, "README")
		assert.True(t, strings.HasPrefix(path, "resources/fizyka/sem-2/"))
		assert.False(t, strings.HasSuffix(path, "."))
	})
}
