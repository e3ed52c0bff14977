package frontmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineTag(t *testing.T) {
	// Engine tags are 1-based, input indices 0-based.
	assert.Equal(t, 1, engineTag(0))
	assert.Equal(t, 2, engineTag(1))
	assert.Equal(t, 100, engineTag(99))
}
