package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBootstrapSQLUsesConfiguredDim(t *testing.T) {
	script, err := renderBootstrapSQL(1536)
	require.NoError(t, err)

	assert.Contains(t, script, "VECTOR(1536)")
	assert.False(t, strings.Contains(script, "{{"), "all placeholders must be filled")
}

func TestRenderBootstrapSQLDefaultsDim(t *testing.T) {
	script, err := renderBootstrapSQL(0)
	require.NoError(t, err)

	assert.Contains(t, script, "VECTOR(768)")
}
