package fwimage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/fwimage"
)

func sampleHeader() *fwimage.HeaderA {
	h := &fwimage.HeaderA{Tag: "np1500", TagVer: 1}
	h.Slots[1] = fwimage.Slot{
		Size: 3, Offset: 2048, Ver: 2, Fstype: fwimage.FstypeRaw, Crc: 0x1234, Dev: "/dev/mtd0",
	}
	return h
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()
	h := sampleHeader()
	buf := h.Encode()
	require.Len(t, buf, fwimage.HeaderSize)

	require.NoError(t, bitcodec.Swap(buf))
	require.NoError(t, bitcodec.Swap(buf))

	got, err := fwimage.DecodeHeaderA(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderScenarioFields(t *testing.T) {
	t.Parallel()
	h := sampleHeader()
	buf := h.Encode()
	assert.Equal(t, []byte("np1500\x00\x00"), buf[0:8])

	got, err := fwimage.DecodeHeaderA(buf)
	require.NoError(t, err)
	assert.Equal(t, "np1500", got.Tag)
	assert.Equal(t, uint32(3), got.Slots[1].Size)
	assert.Equal(t, uint32(2048), got.Slots[1].Offset)
	assert.Equal(t, uint32(6), got.Slots[1].Fstype)
	assert.Equal(t, "/dev/mtd0", got.Slots[1].Dev)
}

func TestEmptySlotsRoundTrip(t *testing.T) {
	t.Parallel()
	h := &fwimage.HeaderA{Tag: "np1100", TagVer: 7}
	buf := h.Encode()
	got, err := fwimage.DecodeHeaderA(buf)
	require.NoError(t, err)
	for i := 1; i < 32; i++ {
		assert.True(t, got.Slots[i].Empty(), "slot %d", i)
	}
}

func TestCheckInvariantsDetectsOverlap(t *testing.T) {
	t.Parallel()
	h := &fwimage.HeaderA{Tag: "np1500", TagVer: 1}
	h.Slots[1] = fwimage.Slot{Size: 100, Offset: 2048}
	h.Slots[2] = fwimage.Slot{Size: 100, Offset: 2100}
	warnings := h.CheckInvariants()
	require.Len(t, warnings, 1)
}

func TestCheckInvariantsClean(t *testing.T) {
	t.Parallel()
	h := sampleHeader()
	assert.Empty(t, h.CheckInvariants())
}
