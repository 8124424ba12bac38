package orderapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMenu(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeMenu(t, `[
		{"id": "10", "name": "Laksa", "restaurant_id": "r9", "restaurant_name": "Katong", "price": "6.50"},
		{"id": "11", "name": "Otah", "restaurant_id": "r9", "restaurant_name": "Katong", "price": 2}
	]`)

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "Katong", c["10"].RestaurantName)
	assert.Equal(t, "6.50", c["10"].Price.StringFixed(2))
	assert.Equal(t, "2.00", c["11"].Price.StringFixed(2))
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing restaurant", `[{"id": "1", "price": "1"}]`},
		{"negative price", `[{"id": "1", "restaurant_id": "r", "price": "-1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeMenu(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCart_Quantity(t *testing.T) {
	c := &Cart{Lines: []Line{{ItemID: "1", Quantity: 2}, {ItemID: "2", Quantity: 3}}}
	assert.Equal(t, 5, c.Quantity())

	i, ok := c.line("2")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = c.line("9")
	assert.False(t, ok)
}
