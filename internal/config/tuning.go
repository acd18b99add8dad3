package config

import (
	"time"

	"github.com/spf13/viper"
)

// Tuning collects the knobs an interactive session reads from config.
type Tuning struct {
	// FuzzyMaxDist bounds the edit distance the autocomplete fallback
	// will tolerate. Zero or negative keeps the engine default.
	FuzzyMaxDist int

	// PrefixIndex toggles the token-prefix candidate index. Output is
	// identical either way; this only trades memory for scan time.
	PrefixIndex bool

	// DigitTimeout is how long the numeric selector buffer survives
	// between keystrokes. Zero keeps the session default.
	DigitTimeout time.Duration
}

// ResolveTuning reads the session knobs from viper, falling back to the
// built-in defaults for anything unset.
func ResolveTuning() Tuning {
	viper.SetDefault("match.prefix_index", true)

	t := Tuning{
		FuzzyMaxDist: viper.GetInt("match.fuzzy_max_distance"),
		PrefixIndex:  viper.GetBool("match.prefix_index"),
	}
	if ms := viper.GetInt("ui.digit_timeout_ms"); ms > 0 {
		t.DigitTimeout = time.Duration(ms) * time.Millisecond
	}
	return t
}
