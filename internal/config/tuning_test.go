package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestResolveTuning_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	tu := ResolveTuning()
	assert.Zero(t, tu.FuzzyMaxDist, "unset distance leaves the engine default")
	assert.True(t, tu.PrefixIndex)
	assert.Zero(t, tu.DigitTimeout, "unset timeout leaves the session default")
}

func TestResolveTuning_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("match.fuzzy_max_distance", 2)
	viper.Set("match.prefix_index", false)
	viper.Set("ui.digit_timeout_ms", 800)

	tu := ResolveTuning()
	assert.Equal(t, 2, tu.FuzzyMaxDist)
	assert.False(t, tu.PrefixIndex)
	assert.Equal(t, 800*time.Millisecond, tu.DigitTimeout)
}
