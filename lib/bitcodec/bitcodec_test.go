package bitcodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
)

func TestSingleByte(t *testing.T) {
	t.Parallel()
	buf := []byte{0xA5, 0, 0, 0, 0, 0, 0, 0}
	require.NoError(t, bitcodec.Swap(buf))
	assert.Equal(t, byte(0x5A), buf[0])
	require.NoError(t, bitcodec.Swap(buf))
	assert.Equal(t, byte(0xA5), buf[0])
}

func TestInvolution(t *testing.T) {
	t.Parallel()
	orig := make([]byte, 2048)
	for i := range orig {
		orig[i] = byte(i * 7)
	}
	buf := append([]byte(nil), orig...)
	require.NoError(t, bitcodec.Swap(buf))
	assert.NotEqual(t, orig, buf)
	require.NoError(t, bitcodec.Swap(buf))
	assert.Equal(t, orig, buf)
}

func TestBadAlignment(t *testing.T) {
	t.Parallel()
	err := bitcodec.Swap(make([]byte, 7))
	require.Error(t, err)
	var alignErr bitcodec.ErrBadAlignment
	require.ErrorAs(t, err, &alignErr)
	assert.Equal(t, 7, alignErr.Len)
}
