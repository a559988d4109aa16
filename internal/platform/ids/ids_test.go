package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, err := NewID("cht")
	require.NoError(t, err)
	b, err := NewID("cht")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "cht_"))
	assert.Len(t, a, len("cht_")+32)
	assert.NotEqual(t, a, b)
}
