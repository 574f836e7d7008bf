package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		currencies []string
		stocks     []string
	}{
		{
			name:       "json",
			input:      `{"user_currencies": ["USD", "EUR"], "user_stocks": ["AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"]}`,
			currencies: []string{"USD", "EUR"},
			stocks:     []string{"AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"},
		},
		{
			name:       "yaml",
			input:      "user_currencies:\n  - usd\nuser_stocks:\n  - aapl\n",
			currencies: []string{"USD"},
			stocks:     []string{"AAPL"},
		},
		{
			name:       "blanks and repeats",
			input:      `{"user_currencies": [" usd ", "", "USD", "eur"]}`,
			currencies: []string{"USD", "EUR"},
			stocks:     []string{},
		},
		{
			name:       "empty document",
			input:      "",
			currencies: []string{},
			stocks:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.currencies, s.UserCurrencies)
			assert.Equal(t, tt.stocks, s.UserStocks)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"user_currencies": "USD"`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user_settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user_currencies": ["USD"], "user_stocks": ["TSLA"]}`), 0o644))

	s := Load(path, zerolog.Nop())
	assert.Equal(t, []string{"USD"}, s.UserCurrencies)
	assert.Equal(t, []string{"TSLA"}, s.UserStocks)
}

func TestLoad_MissingFileDegradesToEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := Load(filepath.Join(t.TempDir(), "missing.json"), zerolog.New(&buf))

	assert.Empty(t, s.UserCurrencies)
	assert.Empty(t, s.UserStocks)
	assert.NotNil(t, s.UserCurrencies)
	assert.Contains(t, buf.String(), "Using empty user settings")

	_, err := LoadStrict(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
