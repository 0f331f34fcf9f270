package unpickle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsInt64(t *testing.T) {
	i, err := AsInt64(int64(42))
	require.NoError(t, err)
	require.Equal(t, int64(42), i)

	_, err = AsInt64("42")
	require.Error(t, err)
}

func TestAsString(t *testing.T) {
	s, err := AsString("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	_, err = AsString(int64(1))
	require.Error(t, err)
}
