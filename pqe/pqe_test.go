package pqe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := E(IO, errors.New("this is an erroneous reader"))
	assert.EqualError(t, err, "io error: this is an erroneous reader")
	assert.Equal(t, "this is an erroneous reader", err.(*Error).Message())

	err = E(Format, "repetition level %d exceeds maximum %d", 3, 2)
	assert.EqualError(t, err, "format error: repetition level 3 exceeds maximum 2")

	assert.EqualError(t, E(Capability), "stream capability error")
	assert.EqualError(t, E(Other), "no error")
}

func TestIsKind(t *testing.T) {
	inner := E(IO, errors.New("boom"))
	wrapped := fmt.Errorf("reading footer: %w", inner)
	require.True(t, IsKind(wrapped, IO))
	require.False(t, IsKind(wrapped, Format))
	require.False(t, IsKind(errors.New("plain"), IO))

	// Nested pqe errors are searched all the way down.
	outer := E(Other, inner)
	require.True(t, IsKind(outer, IO))
	require.True(t, errors.Is(outer, inner))
}

func TestEBadArg(t *testing.T) {
	err := E(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type int")
}
