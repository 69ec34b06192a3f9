package fwimage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/diskio"
	"github.com/OpenNoah/NoahSplit/lib/manifest"
	"github.com/OpenNoah/NoahSplit/lib/textui"
)

// ExtractorA reads a FAMILY-A image and emits a manifest, optionally
// extracting each package's payload to its own file.
type ExtractorA struct {
	Logger *logrus.Logger
}

func (e *ExtractorA) logger() *logrus.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logrus.StandardLogger()
}

// Extract reads imagePath and writes a manifest to manifestPath. When
// extractPayloads is true, each non-empty slot's bytes are also
// copied to "<manifest dir>/segmentNN.bin" and CRC-verified.
func (e *ExtractorA) Extract(imagePath, manifestPath string, extractPayloads bool) error {
	f, err := diskio.Open(imagePath, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	img := diskio.NewSequentialReader(f)

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(img, buf); err != nil {
		return ErrTruncated{Where: "header"}
	}
	if err := bitcodec.Swap(buf); err != nil {
		return err
	}
	header, err := DecodeHeaderA(buf)
	if err != nil {
		return err
	}

	// Run the slot-overlap/bounds invariant check unconditionally,
	// even under --info: it never fails the operation, only warns.
	for _, w := range header.CheckInvariants() {
		e.logger().Warn(w)
	}

	mf, err := os.Create(manifestPath)
	if err != nil {
		return err
	}
	defer mf.Close()

	mw := manifest.NewWriter(mf)
	if err := mw.WriteHeader(manifest.Header{Tag: header.Tag, Ver: header.TagVer}); err != nil {
		return err
	}

	manifestDir := filepath.Dir(manifestPath)
	for i := 1; i < numSlots; i++ {
		slot := header.Slots[i]
		if slot.Empty() {
			continue
		}

		segName := fmt.Sprintf("segment%02d.bin", i)
		err := mw.WritePkg(manifest.PkgOut{
			Name: fmt.Sprintf("sgmnt%02d", i), Idx: i, File: segName,
			Ver: slot.Ver, Dev: slot.Dev, Fstype: FstypeLabel(slot.Fstype), Crc: slot.Crc,
		})
		if err != nil {
			return err
		}

		if !extractPayloads {
			continue
		}

		if _, err := img.Seek(int64(slot.Offset), io.SeekStart); err != nil {
			return ErrNoSeek{Offset: int64(slot.Offset), Err: err}
		}
		data := make([]byte, slot.Size)
		if _, err := io.ReadFull(img, data); err != nil {
			return ErrTruncated{Where: segName}
		}
		if err := os.WriteFile(filepath.Join(manifestDir, segName), data, 0o644); err != nil {
			return err
		}

		crc, err := computeCRC(data, slot.Fstype, header.Tag)
		if err != nil {
			return err
		}
		if crc != slot.Crc {
			return ErrCrcMismatch{Expected: slot.Crc, Got: crc}
		}
		e.logger().WithFields(logrus.Fields{
			"idx": i, "file": segName, "size": textui.IEC(len(data), "B"),
		}).Debug("extracted segment")
	}
	return nil
}
