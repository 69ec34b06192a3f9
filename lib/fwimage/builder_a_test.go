package fwimage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/fwimage"
	"github.com/OpenNoah/NoahSplit/lib/manifest"
)

const sampleManifest = `[header]
tag=np1500
ver=0x00000001

[pkg]
name=sgmnt01
idx=1
include=1
file=boot.bin
ver=0x00000002
dev=/dev/mtd0
fstype=raw

[pkg]
name=sgmnt02
idx=2
include=1
file=rootfs.bin
ver=0x00000003
dev=/dev/mtd1
fstype=ubifs
`

func writeManifestScenario(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot.bin"), []byte("boot-segment-data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rootfs.bin"), make([]byte, 8192), 0o644))

	mfPath := filepath.Join(dir, "manifest.txt")
	require.NoError(t, os.WriteFile(mfPath, []byte(sampleManifest), 0o644))
	return mfPath
}

func TestBuildExtractRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mfPath := writeManifestScenario(t, dir)

	imgPath := filepath.Join(dir, "image.bin")
	b := &fwimage.BuilderA{}
	require.NoError(t, b.Build(mfPath, imgPath))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))
	outManifest := filepath.Join(outDir, "manifest.txt")

	e := &fwimage.ExtractorA{}
	require.NoError(t, e.Extract(imgPath, outManifest, true))

	got, err := os.ReadFile(filepath.Join(outDir, "segment01.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("boot-segment-data"), got)

	gotRootfs, err := os.ReadFile(filepath.Join(outDir, "segment02.bin"))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8192), gotRootfs)

	m, err := os.Open(outManifest)
	require.NoError(t, err)
	defer m.Close()
	parsed, err := manifest.Parse(m)
	require.NoError(t, err)
	assert.Equal(t, "np1500", parsed.Header.Tag)
	assert.Equal(t, uint32(1), parsed.Header.Ver)
	require.Len(t, parsed.Pkgs, 2)
	assert.Equal(t, "raw", parsed.Pkgs[0].Fstype)
	assert.Equal(t, "ubifs", parsed.Pkgs[1].Fstype)
}

func TestBuildWritesScrambledHeader(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mfPath := writeManifestScenario(t, dir)

	imgPath := filepath.Join(dir, "image.bin")
	b := &fwimage.BuilderA{}
	require.NoError(t, b.Build(mfPath, imgPath))

	raw, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), fwimage.HeaderSize)

	buf := append([]byte(nil), raw[:fwimage.HeaderSize]...)
	require.NoError(t, bitcodec.Swap(buf))
	h, err := fwimage.DecodeHeaderA(buf)
	require.NoError(t, err)
	assert.Equal(t, "np1500", h.Tag)
	assert.Equal(t, uint32(17), h.Slots[1].Size)
}

func TestBuildAppendsInManifestOrderNotIdxOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.bin"), []byte("SECOND"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.bin"), []byte("FIRST"), 0o644))

	// idx=2 appears before idx=1 in the manifest; the on-disk layout must
	// follow this manifest order, with idx only selecting the header slot.
	mf := `[header]
tag=np1500
ver=0x00000001

[pkg]
name=sgmnt02
idx=2
include=1
file=second.bin
ver=0x00000001
dev=/dev/mtd1
fstype=raw

[pkg]
name=sgmnt01
idx=1
include=1
file=first.bin
ver=0x00000001
dev=/dev/mtd0
fstype=raw
`
	mfPath := filepath.Join(dir, "manifest.txt")
	require.NoError(t, os.WriteFile(mfPath, []byte(mf), 0o644))

	imgPath := filepath.Join(dir, "image.bin")
	b := &fwimage.BuilderA{}
	require.NoError(t, b.Build(mfPath, imgPath))

	raw, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	buf := append([]byte(nil), raw[:fwimage.HeaderSize]...)
	require.NoError(t, bitcodec.Swap(buf))
	h, err := fwimage.DecodeHeaderA(buf)
	require.NoError(t, err)

	// second.bin was written first, so its offset is the lower one even
	// though it's recorded under the higher slot index.
	assert.Less(t, h.Slots[2].Offset, h.Slots[1].Offset)
	assert.Equal(t, uint32(fwimage.HeaderSize), h.Slots[2].Offset)
}

func TestBuildRejectsUnknownFstype(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot.bin"), []byte("x"), 0o644))
	mf := `[header]
tag=np1500
ver=0x00000001

[pkg]
name=sgmnt01
idx=1
include=1
file=boot.bin
ver=0x00000001
dev=/dev/mtd0
fstype=bogus
`
	mfPath := filepath.Join(dir, "manifest.txt")
	require.NoError(t, os.WriteFile(mfPath, []byte(mf), 0o644))

	b := &fwimage.BuilderA{}
	err := b.Build(mfPath, filepath.Join(dir, "image.bin"))
	assert.Error(t, err)
}
