package taskpool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobTaggedError_ExtractsJobIDAndIndex(t *testing.T) {
	base := errors.New("boom")
	tagged := newJobTaggedError(base, jobID(7), 3)

	id, ok := ExtractJobID(tagged)
	require.True(t, ok)
	require.EqualValues(t, 7, id)

	idx, ok := ExtractElementIndex(tagged)
	require.True(t, ok)
	require.Equal(t, 3, idx)

	require.ErrorIs(t, tagged, base)
	require.Equal(t, base.Error(), tagged.Error())
}

func TestJobTaggedError_NegativeIndexMeansNone(t *testing.T) {
	tagged := newJobTaggedError(errors.New("boom"), jobID(1), -1)
	_, ok := ExtractElementIndex(tagged)
	require.False(t, ok)
}

func TestExtract_UntaggedErrorReturnsFalse(t *testing.T) {
	plain := errors.New("plain")
	_, ok := ExtractJobID(plain)
	require.False(t, ok)
	_, ok = ExtractElementIndex(plain)
	require.False(t, ok)
}
