package fwimage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/manifest"
	"github.com/OpenNoah/NoahSplit/lib/textui"
)

// BuilderA builds a FAMILY-A image from a manifest and its referenced
// input files.
type BuilderA struct {
	Logger *logrus.Logger
}

func (b *BuilderA) logger() *logrus.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return logrus.StandardLogger()
}

// Build reads the manifest at manifestPath, resolving referenced
// files relative to the manifest's parent directory, and writes a
// FAMILY-A image to outPath.
func (b *BuilderA) Build(manifestPath, outPath string) error {
	mfFile, err := os.Open(manifestPath)
	if err != nil {
		return err
	}
	defer mfFile.Close()

	m, err := manifest.Parse(mfFile)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(make([]byte, HeaderSize)); err != nil {
		return err
	}

	header := &HeaderA{Tag: m.Header.Tag, TagVer: m.Header.Ver}
	manifestDir := filepath.Dir(manifestPath)
	pos := int64(HeaderSize)

	// Packages are appended in the order their [pkg] blocks appear in
	// the manifest, not in ascending idx order; idx only selects the
	// header slot a package is recorded in, not its on-disk position.
	for _, p := range m.Pkgs {
		filePath := filepath.Join(manifestDir, p.File)
		data, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}

		offset := pos
		if _, err := out.Write(data); err != nil {
			return err
		}
		padded := align512(len(data))
		if pad := padded - len(data); pad > 0 {
			if _, err := out.Write(make([]byte, pad)); err != nil {
				return err
			}
		}
		pos += int64(padded)

		fstypeCode, err := ParseFstype(p.Fstype)
		if err != nil {
			return err
		}

		crc := p.Crc
		if !p.HasCrc {
			crc, err = computeCRC(data, fstypeCode, header.Tag)
			if err != nil {
				return err
			}
		}

		header.Slots[p.Idx] = Slot{
			Size:   uint32(len(data)),
			Offset: uint32(offset),
			Ver:    p.Ver,
			Fstype: fstypeCode,
			Crc:    crc,
			Dev:    p.Dev,
		}
		b.logger().WithFields(logrus.Fields{
			"idx": p.Idx, "file": p.File, "size": textui.IEC(len(data), "B"), "offset": offset,
		}).Debug("appended package")
	}

	for _, w := range header.CheckInvariants() {
		b.logger().Warn(w)
	}

	encoded := header.Encode()
	if err := bitcodec.Swap(encoded); err != nil {
		return err
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return ErrNoSeek{Offset: 0, Err: err}
	}
	if _, err := out.Write(encoded); err != nil {
		return err
	}
	return nil
}
