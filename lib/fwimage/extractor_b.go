package fwimage

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/OpenNoah/NoahSplit/lib/binstruct"
	"github.com/OpenNoah/NoahSplit/lib/diskio"
	"github.com/OpenNoah/NoahSplit/lib/manifest"
	"github.com/OpenNoah/NoahSplit/lib/textui"
	"github.com/OpenNoah/NoahSplit/lib/xorcodec"
)

const (
	setupOffset   = 0x30000
	menuWordCount = 18
	fullWordCount = 35
)

type fixedSectionB struct {
	Name         string
	Offset, Size int64
}

var fixedSectionsB = []fixedSectionB{
	{"ploader", 0x00000, 0x08000},
	{"sloader", 0x08000, 0x10000},
	{"updtool", 0x18000, 0x18000},
}

// DeviceDescriptor is one FAMILY-B device payload descriptor.
type DeviceDescriptor struct {
	Type, Dest, Size, Rawsize, Compressed, Pattern, Cksum uint32
}

// deviceDescriptorWire is DeviceDescriptor's 28-byte on-disk layout,
// decoded via lib/binstruct since FAMILY-B's descriptor arrays are
// homogeneous repeated structs, unlike HeaderA's single heterogeneous
// layout.
type deviceDescriptorWire struct {
	Type       binstruct.U32le `bin:"off=0,siz=4"`
	Dest       binstruct.U32le `bin:"off=4,siz=4"`
	Size       binstruct.U32le `bin:"off=8,siz=4"`
	Rawsize    binstruct.U32le `bin:"off=12,siz=4"`
	Compressed binstruct.U32le `bin:"off=16,siz=4"`
	Pattern    binstruct.U32le `bin:"off=20,siz=4"`
	Cksum      binstruct.U32le `bin:"off=24,siz=4"`
	End        binstruct.End   `bin:"off=28"`
}

// SystemDescriptor is one FAMILY-B system-section descriptor.
type SystemDescriptor struct {
	Index, Size, Rawsize, Compressed uint32
}

// systemDescriptorWire is SystemDescriptor's 16-byte on-disk layout.
type systemDescriptorWire struct {
	Index      binstruct.U32le `bin:"off=0,siz=4"`
	Size       binstruct.U32le `bin:"off=4,siz=4"`
	Rawsize    binstruct.U32le `bin:"off=8,siz=4"`
	Compressed binstruct.U32le `bin:"off=12,siz=4"`
	End        binstruct.End   `bin:"off=16"`
}

// ExtractorB reads a FAMILY-B image and emits a descriptor dump,
// optionally extracting each section's and device's payload.
type ExtractorB struct {
	Logger *logrus.Logger
}

func (e *ExtractorB) logger() *logrus.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logrus.StandardLogger()
}

// Extract reads imagePath and writes a descriptor dump to
// manifestPath. When extractPayloads is true, the fixed sections,
// system sections, and device payloads are also written alongside
// the manifest.
func (e *ExtractorB) Extract(imagePath, manifestPath string, extractPayloads bool) error {
	f, err := diskio.Open(imagePath, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	img := diskio.NewSequentialReader(f)

	manifestDir := filepath.Dir(manifestPath)
	mf, err := os.Create(manifestPath)
	if err != nil {
		return err
	}
	defer mf.Close()
	mw := manifest.NewWriter(mf)

	if err := mw.WriteSection("summary"); err != nil {
		return err
	}
	if err := mw.WriteField("title", "Fixed offset encrypted sections"); err != nil {
		return err
	}
	for _, fs := range fixedSectionsB {
		if err := e.extractFixedSection(img, manifestDir, fs, mw, extractPayloads); err != nil {
			return err
		}
	}

	isFull, menu, full, err := e.readSetup(img)
	if err != nil {
		return err
	}
	if err := e.writeSetup(mw, isFull, menu, full); err != nil {
		return err
	}

	devs, err := e.readDeviceDescriptors(img)
	if err != nil {
		return err
	}

	if err := e.extractSystemSections(img, manifestDir, mw, extractPayloads); err != nil {
		return err
	}

	var fpos [10]uint32
	if err := readU32Array(img, fpos[:]); err != nil {
		return err
	}

	for i, dev := range devs {
		if err := e.extractDevice(img, manifestDir, i, dev, fpos[i], isFull, mw, extractPayloads); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExtractorB) extractFixedSection(img *diskio.SequentialReader, manifestDir string, fs fixedSectionB, mw *manifest.Writer, extractPayloads bool) error {
	if err := mw.WriteSection(fs.Name); err != nil {
		return err
	}
	if err := mw.WriteFieldHex("offset", uint32(fs.Offset)); err != nil {
		return err
	}
	if err := mw.WriteFieldHex("size", uint32(fs.Size)); err != nil {
		return err
	}
	e.logger().WithFields(logrus.Fields{
		"name": fs.Name, "offset": fmt.Sprintf("0x%x", fs.Offset), "size": textui.IEC(fs.Size, "B"),
	}).Info("fixed section")

	if !extractPayloads {
		return nil
	}
	if _, err := img.Seek(fs.Offset, io.SeekStart); err != nil {
		return ErrNoSeek{Offset: fs.Offset, Err: err}
	}
	padded := align8(int(fs.Size))
	buf := make([]byte, padded)
	if _, err := io.ReadFull(img, buf); err != nil {
		return ErrTruncated{Where: fs.Name}
	}
	if err := xorcodec.Apply(buf, PatternB[:]); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(manifestDir, fs.Name), buf[:fs.Size], 0o644)
}

// inflateChunk decompresses one full-variant device chunk, which may
// be either zlib- or gzip-framed: the source auto-detects the stream
// format (inflateInit2 with 32+MAX_WBITS), so the magic byte pair is
// checked here rather than assuming zlib framing.
func inflateChunk(z []byte) ([]byte, error) {
	var r io.ReadCloser
	var err error
	if len(z) >= 2 && z[0] == 0x1f && z[1] == 0x8b {
		r, err = gzip.NewReader(bytes.NewReader(z))
	} else {
		r, err = zlib.NewReader(bytes.NewReader(z))
	}
	if err != nil {
		return nil, ErrInflate{Detail: err.Error()}
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrInflate{Detail: err.Error()}
	}
	return out, nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrTruncated{Where: "u32"}
	}
	var v binstruct.U32le
	if _, err := binstruct.Unmarshal(b[:], &v); err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func readU32Array(r io.Reader, out []uint32) error {
	buf := make([]byte, 4*len(out))
	if _, err := io.ReadFull(r, buf); err != nil {
		return ErrTruncated{Where: "u32 array"}
	}
	for i := range out {
		if _, err := binstruct.Unmarshal(buf[i*4:i*4+4], &out[i]); err != nil {
			return err
		}
	}
	return nil
}

type setupMenu struct {
	Date                         string
	Autorun, Quiet               uint32
	R0, R1                       uint32
	Keeplogs, Dumpnand           uint32
	R2, R3, R4, R5               uint32
}

type setupFull struct {
	Version, Date, Model, Hostname string
	Autorun, Keeplogs, Dumpnand    uint32
}

// readSetup reads the 18-word setup header at setupOffset, and
// decides between the menu and full variants using the model[0]=='n'
// heuristic mandated by the source: this is intentionally not
// second-guessed with an alternative discriminator.
func (e *ExtractorB) readSetup(img *diskio.SequentialReader) (isFull bool, menu setupMenu, full setupFull, err error) {
	if _, err = img.Seek(setupOffset, io.SeekStart); err != nil {
		return false, menu, full, ErrNoSeek{Offset: setupOffset, Err: err}
	}
	buf18 := make([]byte, menuWordCount*4)
	if _, err = io.ReadFull(img, buf18); err != nil {
		return false, menu, full, ErrTruncated{Where: "setup"}
	}

	// Byte 64 is where model[0] would land under the full layout
	// (after version[32] and date[32], i.e. word 16).
	isFull = buf18[64] == 'n'
	if !isFull {
		menu = setupMenu{
			Date:     trimNUL(buf18[0:32]),
			Autorun:  binary.LittleEndian.Uint32(buf18[32:36]),
			Quiet:    binary.LittleEndian.Uint32(buf18[36:40]),
			R0:       binary.LittleEndian.Uint32(buf18[40:44]),
			R1:       binary.LittleEndian.Uint32(buf18[44:48]),
			Keeplogs: binary.LittleEndian.Uint32(buf18[48:52]),
			Dumpnand: binary.LittleEndian.Uint32(buf18[52:56]),
			R2:       binary.LittleEndian.Uint32(buf18[56:60]),
			R3:       binary.LittleEndian.Uint32(buf18[60:64]),
			R4:       binary.LittleEndian.Uint32(buf18[64:68]),
			R5:       binary.LittleEndian.Uint32(buf18[68:72]),
		}
		return false, menu, full, nil
	}

	if _, err = img.Seek(setupOffset, io.SeekStart); err != nil {
		return false, menu, full, ErrNoSeek{Offset: setupOffset, Err: err}
	}
	buf35 := make([]byte, fullWordCount*4)
	if _, err = io.ReadFull(img, buf35); err != nil {
		return false, menu, full, ErrTruncated{Where: "setup"}
	}
	full = setupFull{
		Version:  trimNUL(buf35[0:32]),
		Date:     trimNUL(buf35[32:64]),
		Model:    trimNUL(buf35[64:96]),
		Hostname: trimNUL(buf35[96:128]),
		Autorun:  binary.LittleEndian.Uint32(buf35[128:132]),
		Keeplogs: binary.LittleEndian.Uint32(buf35[132:136]),
		Dumpnand: binary.LittleEndian.Uint32(buf35[136:140]),
	}
	return true, menu, full, nil
}

func (e *ExtractorB) writeSetup(mw *manifest.Writer, isFull bool, menu setupMenu, full setupFull) error {
	if err := mw.WriteSection("setup"); err != nil {
		return err
	}
	if !isFull {
		fields := []struct {
			key string
			val uint32
		}{
			{"autorun", menu.Autorun}, {"quiet", menu.Quiet},
			{"_r0", menu.R0}, {"_r1", menu.R1},
			{"keeplogs", menu.Keeplogs}, {"dumpnand", menu.Dumpnand},
			{"_r2", menu.R2}, {"_r3", menu.R3}, {"_r4", menu.R4}, {"_r5", menu.R5},
		}
		if err := mw.WriteField("date", menu.Date); err != nil {
			return err
		}
		for _, f := range fields {
			if err := mw.WriteFieldHex(f.key, f.val); err != nil {
				return err
			}
		}
		return nil
	}

	if err := mw.WriteField("version", full.Version); err != nil {
		return err
	}
	if err := mw.WriteField("date", full.Date); err != nil {
		return err
	}
	if err := mw.WriteField("model", full.Model); err != nil {
		return err
	}
	if err := mw.WriteField("hostname", full.Hostname); err != nil {
		return err
	}
	for _, f := range []struct {
		key string
		val uint32
	}{{"autorun", full.Autorun}, {"keeplogs", full.Keeplogs}, {"dumpnand", full.Dumpnand}} {
		if err := mw.WriteFieldHex(f.key, f.val); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExtractorB) readDeviceDescriptors(img *diskio.SequentialReader) ([]DeviceDescriptor, error) {
	ndev, err := readU32(img)
	if err != nil {
		return nil, err
	}
	devs := make([]DeviceDescriptor, ndev)
	for i := range devs {
		buf := make([]byte, 28)
		if _, err := io.ReadFull(img, buf); err != nil {
			return nil, ErrTruncated{Where: "device descriptor"}
		}
		var wire deviceDescriptorWire
		if _, err := binstruct.Unmarshal(buf, &wire); err != nil {
			return nil, err
		}
		devs[i] = DeviceDescriptor{
			Type: uint32(wire.Type), Dest: uint32(wire.Dest), Size: uint32(wire.Size),
			Rawsize: uint32(wire.Rawsize), Compressed: uint32(wire.Compressed),
			Pattern: uint32(wire.Pattern), Cksum: uint32(wire.Cksum),
		}
	}
	return devs, nil
}

func (e *ExtractorB) extractSystemSections(img *diskio.SequentialReader, manifestDir string, mw *manifest.Writer, extractPayloads bool) error {
	nsys, err := readU32(img)
	if err != nil {
		return err
	}
	for i := uint32(0); i < nsys; i++ {
		buf := make([]byte, 16)
		if _, err := io.ReadFull(img, buf); err != nil {
			return ErrTruncated{Where: "system descriptor"}
		}
		var wire systemDescriptorWire
		if _, err := binstruct.Unmarshal(buf, &wire); err != nil {
			return err
		}
		sys := SystemDescriptor{
			Index: uint32(wire.Index), Size: uint32(wire.Size),
			Rawsize: uint32(wire.Rawsize), Compressed: uint32(wire.Compressed),
		}

		name := fmt.Sprintf("sys%d", i)
		if err := mw.WriteSection(name); err != nil {
			return err
		}
		if err := mw.WriteFieldHex("index", sys.Index); err != nil {
			return err
		}
		if err := mw.WriteFieldHex("size", sys.Size); err != nil {
			return err
		}
		if err := mw.WriteFieldHex("rawsize", sys.Rawsize); err != nil {
			return err
		}
		if err := mw.WriteFieldHex("compressed", sys.Compressed); err != nil {
			return err
		}

		data := make([]byte, sys.Size)
		if _, err := io.ReadFull(img, data); err != nil {
			return ErrTruncated{Where: name}
		}
		// These sections are stored XORed with a zero byte, which is the
		// identity, so no XOR pass is applied to them.
		if !extractPayloads {
			continue
		}
		ext := "bin"
		if sys.Compressed != 0 {
			ext = "gz"
		}
		fname := fmt.Sprintf("%s.%s", name, ext)
		if err := os.WriteFile(filepath.Join(manifestDir, fname), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExtractorB) extractDevice(img *diskio.SequentialReader, manifestDir string, i int, dev DeviceDescriptor, fpos uint32, isFull bool, mw *manifest.Writer, extractPayloads bool) error {
	name := fmt.Sprintf("dev%d", i)
	if err := mw.WriteSection(name); err != nil {
		return err
	}
	for _, f := range []struct {
		key string
		val uint32
	}{
		{"type", dev.Type}, {"dest", dev.Dest}, {"size", dev.Size}, {"rawsize", dev.Rawsize},
		{"compressed", dev.Compressed}, {"pattern", dev.Pattern}, {"cksum", dev.Cksum},
	} {
		if err := mw.WriteFieldHex(f.key, f.val); err != nil {
			return err
		}
	}

	if !extractPayloads {
		return nil
	}

	if _, err := img.Seek(int64(fpos), io.SeekStart); err != nil {
		return ErrNoSeek{Offset: int64(fpos), Err: err}
	}

	destName := filepath.Base(deviceDestPath(dev.Dest))
	gz := !isFull && dev.Compressed != 0
	switch {
	case gz:
		destName += ".gz"
	case !strings.Contains(destName, "."):
		destName += ".bin"
	}
	outPath := filepath.Join(manifestDir, destName)

	fullCompressed := isFull && dev.Compressed != 0
	if !fullCompressed {
		buf := make([]byte, dev.Size)
		if _, err := io.ReadFull(img, buf); err != nil {
			return ErrTruncated{Where: name}
		}
		xorcodec.Single(buf, byte(dev.Pattern))
		return os.WriteFile(outPath, buf, 0o644)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	for {
		usize, err := readU32(img)
		if err != nil {
			return err
		}
		zsize, err := readU32(img)
		if err != nil {
			return err
		}
		if usize == 0 {
			return nil
		}

		padded := align8(int(zsize))
		zbuf := make([]byte, padded)
		if _, err := io.ReadFull(img, zbuf); err != nil {
			return ErrTruncated{Where: name}
		}
		if err := xorcodec.Apply(zbuf, PatternB[:]); err != nil {
			return err
		}

		inflated, err := inflateChunk(zbuf[:zsize])
		if err != nil {
			return err
		}
		if uint32(len(inflated)) != usize {
			return ErrInflate{Detail: fmt.Sprintf("expected %d inflated bytes, got %d", usize, len(inflated))}
		}
		if _, err := out.Write(inflated); err != nil {
			return err
		}
	}
}
