package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceKey_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		place Place
		want  PlaceKey
	}{
		{"plain", Place{City: "San Diego", State: "CA"}, "san diego, CA"},
		{"mixed case", Place{City: "CHICO", State: "ca"}, "chico, CA"},
		{"extra whitespace", Place{City: "  San   Diego ", State: " CA "}, "san diego, CA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.place.Key())
		})
	}
}

func TestPlaceKey_EqualPlacesShareKey(t *testing.T) {
	a := Place{City: "San Diego", State: "CA"}.Key()
	b := Place{City: "san  diego", State: "ca"}.Key()
	assert.Equal(t, a, b)
}
