// Package settings loads the user preferences file that picks which
// currencies and stocks the dashboard quotes.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Settings holds the user's dashboard preferences.
type Settings struct {
	UserCurrencies []string `yaml:"user_currencies" json:"user_currencies"`
	UserStocks     []string `yaml:"user_stocks" json:"user_stocks"`
}

// Parse decodes settings from JSON or YAML. JSON is a subset of YAML, so a
// single decoder serves both. Symbols are trimmed and upper-cased; blanks
// and repeats are dropped.
func Parse(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.UserCurrencies = normalizeSymbols(s.UserCurrencies)
	s.UserStocks = normalizeSymbols(s.UserStocks)
	return s, nil
}

// LoadStrict reads and parses the settings file at path.
func LoadStrict(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load is LoadStrict that logs failures and returns empty settings instead.
func Load(path string, log zerolog.Logger) Settings {
	s, err := LoadStrict(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Using empty user settings")
		return Settings{UserCurrencies: []string{}, UserStocks: []string{}}
	}
	log.Debug().
		Strs("currencies", s.UserCurrencies).
		Strs("stocks", s.UserStocks).
		Msg("Loaded user settings")
	return s
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
