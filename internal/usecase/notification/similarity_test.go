package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "zakup zakończony", NormalizeTitle("  Zakup \t ZAKOŃCZONY\n"))
	assert.Equal(t, "", NormalizeTitle("   "))
}

func TestStringSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		check func(t *testing.T, got float64)
	}{
		{"case and trailing space", "Zakup zakończony", "zakup zakończony ", func(t *testing.T, got float64) {
			assert.GreaterOrEqual(t, got, 0.8)
		}},
		{"distinct titles", "Zakup zakończony", "Sprzedaż zakończona", func(t *testing.T, got float64) {
			assert.Less(t, got, 0.8)
		}},
		{"punctuation variant", "Zakup zakończony", "Zakup Zakończony!!", func(t *testing.T, got float64) {
			assert.Greater(t, got, 0.8)
		}},
		{"both empty", "", "  ", func(t *testing.T, got float64) {
			assert.Equal(t, 1.0, got)
		}},
		{"one empty", "abc", "", func(t *testing.T, got float64) {
			assert.Equal(t, 0.0, got)
		}},
		{"multibyte counted as runes", "ąę", "ąe", func(t *testing.T, got float64) {
			assert.InDelta(t, 0.5, got, 1e-9)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			tt.check(t, got)
		})
	}
}

func TestStringSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{{"Purchase completed", "purchase complete"}, {"a", "xyz"}, {"", "x"}}
	for _, p := range pairs {
		assert.Equal(t, StringSimilarity(p[0], p[1]), StringSimilarity(p[1], p[0]))
	}
}
