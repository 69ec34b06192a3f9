package crc32np_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/crc32np"
)

func TestSumComposes(t *testing.T) {
	t.Parallel()
	data := []byte("the quick brown fox jumps over the lazy dog, twice over")
	whole := crc32np.Sum(data)

	for split := 0; split <= len(data); split++ {
		split := split
		crc := crc32np.SumAppend(0, data[:split])
		crc = crc32np.SumAppend(crc, data[split:])
		assert.Equal(t, whole, crc, "split at %d", split)
	}
}

func TestPlain(t *testing.T) {
	t.Parallel()
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	crc, err := crc32np.Plain(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, crc32np.Sum(data), crc)
}

func TestUBIFSSkipsUnmappedLEB(t *testing.T) {
	t.Parallel()
	lebSize := 16
	leb0 := bytes.Repeat([]byte{0xFF}, lebSize)
	leb1 := bytes.Repeat([]byte{0x00}, lebSize)

	twoLEB := append([]byte{0, 0, 0, 0}, leb0...)
	twoLEB = append(twoLEB, []byte{0, 0, 0, 0}...)
	twoLEB = append(twoLEB, leb1...)

	oneLEB := append([]byte{0, 0, 0, 0}, leb1...)

	crcTwo, err := crc32np.UBIFS(bytes.NewReader(twoLEB), lebSize)
	require.NoError(t, err)
	crcOne, err := crc32np.UBIFS(bytes.NewReader(oneLEB), lebSize)
	require.NoError(t, err)
	assert.Equal(t, crcOne, crcTwo)
}

func TestUBIFSAllFFIsZero(t *testing.T) {
	t.Parallel()
	lebSize := 16
	leb := bytes.Repeat([]byte{0xFF}, lebSize)
	blocks := append([]byte{0, 0, 0, 0}, leb...)
	blocks = append(blocks, []byte{0, 0, 0, 0}...)
	blocks = append(blocks, leb...)

	crc, err := crc32np.UBIFS(bytes.NewReader(blocks), lebSize)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), crc)
}

func TestNANDIgnoresOOB(t *testing.T) {
	t.Parallel()
	page, oob := 8, 4
	block1 := append(bytes.Repeat([]byte{0x11}, page), bytes.Repeat([]byte{0xAA}, oob)...)
	block2 := append(bytes.Repeat([]byte{0x22}, page), bytes.Repeat([]byte{0xBB}, oob)...)

	crcA, err := crc32np.NAND(bytes.NewReader(append(block1, block2...)), page, oob)
	require.NoError(t, err)

	onlyPages := append(bytes.Repeat([]byte{0x11}, page), bytes.Repeat([]byte{0x22}, page)...)
	crcB := crc32np.Sum(onlyPages)
	assert.Equal(t, crcB, crcA)
}
