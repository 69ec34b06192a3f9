package manifest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNoah/NoahSplit/lib/manifest"
)

func TestParseMinimal(t *testing.T) {
	t.Parallel()
	in := "[header]\ntag=np1500\nver=0x00000001\n\n" +
		"[pkg]\nidx=1\ninclude=1\nfile=a.bin\nver=0x2\ndev=/dev/mtd0\nfstype=raw\n"
	m, err := manifest.Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "np1500", m.Header.Tag)
	assert.Equal(t, uint32(1), m.Header.Ver)
	require.Len(t, m.Pkgs, 1)
	assert.Equal(t, 1, m.Pkgs[0].Idx)
	assert.Equal(t, "a.bin", m.Pkgs[0].File)
	assert.Equal(t, uint32(2), m.Pkgs[0].Ver)
	assert.Equal(t, "/dev/mtd0", m.Pkgs[0].Dev)
	assert.Equal(t, "raw", m.Pkgs[0].Fstype)
}

func TestParseExcludesNonIncluded(t *testing.T) {
	t.Parallel()
	in := "[header]\ntag=np1500\nver=0x1\n\n" +
		"[pkg]\nidx=1\ninclude=0\nfile=a.bin\nver=0x1\ndev=x\nfstype=raw\n\n" +
		"[pkg]\nidx=2\ninclude=1\nfile=b.bin\nver=0x1\ndev=y\nfstype=raw\n"
	m, err := manifest.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, m.Pkgs, 1)
	assert.Equal(t, 2, m.Pkgs[0].Idx)
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	t.Parallel()
	in := "# a comment\n\n[header]\ntag=np1500\nver=0x1\n\n" +
		"[pkg]\n# note\nidx=1\ninclude=1\nfile=a.bin\nver=0x1\ndev=x\nfstype=raw\n"
	m, err := manifest.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, m.Pkgs, 1)
}

func TestParseCRLFTolerant(t *testing.T) {
	t.Parallel()
	in := "[header]\r\ntag=np1500\r\nver=0x1\r\n"
	m, err := manifest.Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "np1500", m.Header.Tag)
}

func TestParseUnknownKey(t *testing.T) {
	t.Parallel()
	in := "[header]\nbogus=1\n"
	_, err := manifest.Parse(strings.NewReader(in))
	require.Error(t, err)
	var badErr manifest.ErrBadManifest
	require.ErrorAs(t, err, &badErr)
	assert.Equal(t, 2, badErr.Line)
}

func TestParseCrcOverride(t *testing.T) {
	t.Parallel()
	in := "[header]\ntag=np1500\nver=0x1\n\n" +
		"[pkg]\nidx=1\ninclude=1\nfile=a.bin\nver=0x1\ndev=x\nfstype=raw\ncrc=0xDEADBEEF\n"
	m, err := manifest.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, m.Pkgs, 1)
	require.True(t, m.Pkgs[0].HasCrc)
	assert.Equal(t, uint32(0xDEADBEEF), m.Pkgs[0].Crc)
}

func TestWriterMatchesExtractScenario(t *testing.T) {
	t.Parallel()
	var buf strings.Builder
	w := manifest.NewWriter(&buf)
	require.NoError(t, w.WriteHeader(manifest.Header{Tag: "np1100", Ver: 0x7}))
	require.NoError(t, w.WritePkg(manifest.PkgOut{
		Name: "sgmnt01", Idx: 1, File: "segment01.bin",
		Ver: 3, Dev: "/dev/mtd3", Fstype: "ubifs", Crc: 0xDEADBEEF,
	}))
	want := "[header]\ntag=np1100\nver=0x00000007\n\n" +
		"[pkg]\nname=sgmnt01\nidx=1\ninclude=1\nfile=segment01.bin\n" +
		"ver=0x00000003\ndev=/dev/mtd3\nfstype=ubifs\n# crc=0xdeadbeef\n"
	assert.Equal(t, want, buf.String())
}
