package xorcodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/fwimage"
	"github.com/OpenNoah/NoahSplit/lib/xorcodec"
)

func TestRepetition(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 16)
	require.NoError(t, xorcodec.Apply(buf, fwimage.PatternB[:]))
	assert.Equal(t, fwimage.PatternB[:16], buf)
}

func TestInvolution(t *testing.T) {
	t.Parallel()
	orig := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf := append([]byte(nil), orig...)
	require.NoError(t, xorcodec.Apply(buf, fwimage.PatternB[:]))
	require.NoError(t, xorcodec.Apply(buf, fwimage.PatternB[:]))
	assert.Equal(t, orig, buf)
}

func TestBadAlignment(t *testing.T) {
	t.Parallel()
	err := xorcodec.Apply(make([]byte, 7), fwimage.PatternB[:])
	require.Error(t, err)
}

func TestSingle(t *testing.T) {
	t.Parallel()
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0}
	xorcodec.Single(buf, 0x5A)
	assert.Equal(t, []byte{0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A}, buf)
}
