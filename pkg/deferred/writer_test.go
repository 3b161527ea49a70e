package deferred

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_FlushReplaysAndResets(t *testing.T) {
	var w Writer

	_, err := w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))
	assert.Equal(t, "first\nsecond\n", out.String())

	out.Reset()
	require.NoError(t, w.Flush(&out))
	assert.Empty(t, out.String())
}
