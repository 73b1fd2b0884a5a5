package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "Order", 5},
		{"Order", "", 5},
		{"Acount", "Account", 1},
		{"Acount", "Amount", 1},
		{"Order", "Orders", 1},
		{"Änderung", "Anderung", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestFindSimilar(t *testing.T) {
	declared := []string{"Account", "Amount", "User", "Product", "Accounts"}

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"ties sorted by name", "Acount", []string{"Account", "Amount", "Accounts"}},
		{"case ignored", "user", []string{"User"}},
		{"nothing close", "Invoice", []string{}},
		{"exact name skipped", "Product", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindSimilar(tt.target, declared))
		})
	}
}

func TestFindSimilar_NoCandidates(t *testing.T) {
	assert.Empty(t, FindSimilar("Account", nil))
}
