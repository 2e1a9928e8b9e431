package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level string

func newLevels() *Enum[level] {
	return NewEnum("level", map[string]level{"debug": "debug", "info": "info", "dry-run": "dry"}, "info")
}

func TestEnumParse(t *testing.T) {
	e := newLevels()

	v, err := e.Parse("  DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, level("debug"), v)

	v, err = e.Parse("dry_run")
	require.NoError(t, err)
	assert.Equal(t, level("dry"), v)

	v, err = e.Parse("")
	require.NoError(t, err)
	assert.Equal(t, level("info"), v)

	_, err = e.Parse("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debug, dry_run, info")
}

func TestEnumNormalizeFallsBack(t *testing.T) {
	assert.Equal(t, level("info"), newLevels().Normalize("loud"))
}
