package fwimage

import "fmt"

// Fstype codes recognised in a FAMILY-A package slot. Only ubifs and
// nand carry different CRC semantics; the rest are label-only.
const (
	FstypeNone  = 0
	FstypeMsdos = 1
	FstypeYaffs = 3
	FstypeNand  = 4
	FstypeRaw   = 6
	FstypeNor   = 7
	FstypeUbifs = 8
)

var fstypeLabels = map[uint32]string{
	FstypeNone:  "none",
	FstypeMsdos: "msdos",
	FstypeYaffs: "yaffs",
	FstypeNand:  "nand",
	FstypeRaw:   "raw",
	FstypeNor:   "nor",
	FstypeUbifs: "ubifs",
}

var fstypeByLabel = func() map[string]uint32 {
	m := make(map[string]uint32, len(fstypeLabels))
	for code, label := range fstypeLabels {
		m[label] = code
	}
	return m
}()

// FstypeLabel renders an fstype code as FAMILY-A's extractor does: a
// known label, or "unknown<N>" for anything else. This is the single
// authoritative label table (see the design note on the two
// disagreeing label tables in the original source); FAMILY-B's
// descriptor dump has no fstype field and does not call it.
func FstypeLabel(code uint32) string {
	if label, ok := fstypeLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("unknown%d", code)
}

// ParseFstype maps a label back to its numeric code, including the
// "unknown<N>" form produced by FstypeLabel.
func ParseFstype(label string) (uint32, error) {
	if code, ok := fstypeByLabel[label]; ok {
		return code, nil
	}
	var n uint32
	if _, err := fmt.Sscanf(label, "unknown%d", &n); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("unrecognised fstype label %q", label)
}

// defaultLebSize is used for any tag not present in lebSizeByTag.
const defaultLebSize = 252 * 1024

var lebSizeByTag = map[string]int{
	"np1300": 252 * 1024,
	"np1500": 252 * 1024,
	"np1501": 504 * 1024,
	"np1380": 504 * 1024,
	"np2150": 504 * 1024,
}

// LebSize returns the UBIFS LEB size to use for CRC purposes for the
// given tag, falling back to the 252 KiB default for unlisted tags.
func LebSize(tag string) int {
	if size, ok := lebSizeByTag[tag]; ok {
		return size
	}
	return defaultLebSize
}

// NandGeometry describes the page/OOB layout used for NAND CRC.
type NandGeometry struct {
	Page, OOB int
}

var nandGeometryByTag = map[string]NandGeometry{
	"np1100": {Page: 2048, OOB: 64},
}

// NandGeometryFor looks up the NAND page/OOB geometry for tag. It
// returns ErrUnknownNandTag if tag isn't in the table; unlike LEB
// size, there is no default since guessing NAND geometry would
// silently corrupt the CRC.
func NandGeometryFor(tag string) (NandGeometry, error) {
	g, ok := nandGeometryByTag[tag]
	if !ok {
		return NandGeometry{}, ErrUnknownNandTag{Tag: tag}
	}
	return g, nil
}
