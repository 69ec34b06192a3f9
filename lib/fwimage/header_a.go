package fwimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed on-disk size of a FAMILY-A header.
const HeaderSize = 2048

const (
	slotSize  = 64
	numSlots  = 32
	tagLen    = 8
	devLen    = 44
)

// Slot is one FAMILY-A package slot (header indices 1..31). A slot is
// empty iff Size == 0.
type Slot struct {
	Size   uint32
	Offset uint32
	Ver    uint32
	Fstype uint32
	Crc    uint32
	Dev    string
}

// Empty reports whether the slot holds no package.
func (s Slot) Empty() bool { return s.Size == 0 }

// HeaderA is the in-memory, descrambled form of FAMILY-A's 2048-byte
// header: one tag slot plus 31 package slots. The on-disk encoding
// uses packed structs and pointer casts in the source; per design
// this is instead modelled as an owned value with explicit
// little-endian encode/decode, so alignment and padding don't depend
// on any particular language's struct layout rules.
type HeaderA struct {
	Tag    string
	TagVer uint32
	// Slots[1..31] are the package slots; Slots[0] is unused filler so
	// that slot index and array index agree with the manifest's idx=.
	Slots [numSlots]Slot
}

func padTo(s string, n int) []byte {
	buf := make([]byte, n)
	copy(buf, s)
	return buf
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Encode serialises h to its 2048-byte on-disk (pre-scramble) form.
func (h *HeaderA) Encode() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:tagLen], padTo(h.Tag, tagLen))
	binary.LittleEndian.PutUint32(buf[tagLen:tagLen+4], h.TagVer)
	// Remaining 52 bytes of the tag slot are reserved and left zero.

	for i := 1; i < numSlots; i++ {
		s := h.Slots[i]
		off := i * slotSize
		binary.LittleEndian.PutUint32(buf[off:off+4], s.Size)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], s.Offset)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], s.Ver)
		binary.LittleEndian.PutUint32(buf[off+12:off+16], s.Fstype)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], s.Crc)
		copy(buf[off+20:off+20+devLen], padTo(s.Dev, devLen))
	}
	return buf
}

// DecodeHeaderA parses a 2048-byte descrambled buffer into a HeaderA.
// buf must be exactly HeaderSize bytes.
func DecodeHeaderA(buf []byte) (*HeaderA, error) {
	if len(buf) != HeaderSize {
		return nil, ErrTruncated{Where: "header"}
	}
	h := &HeaderA{
		Tag:    trimNUL(buf[0:tagLen]),
		TagVer: binary.LittleEndian.Uint32(buf[tagLen : tagLen+4]),
	}
	for i := 1; i < numSlots; i++ {
		off := i * slotSize
		h.Slots[i] = Slot{
			Size:   binary.LittleEndian.Uint32(buf[off : off+4]),
			Offset: binary.LittleEndian.Uint32(buf[off+4 : off+8]),
			Ver:    binary.LittleEndian.Uint32(buf[off+8 : off+12]),
			Fstype: binary.LittleEndian.Uint32(buf[off+12 : off+16]),
			Crc:    binary.LittleEndian.Uint32(buf[off+16 : off+20]),
			Dev:    trimNUL(buf[off+20 : off+20+devLen]),
		}
	}
	return h, nil
}

// CheckInvariants reports violations of the two structural invariants
// that every HeaderA must satisfy: no two non-empty slots overlap in
// [offset, offset+size), and every non-empty slot lies entirely after
// the header. It never fails an operation by itself; callers log what
// it returns.
func (h *HeaderA) CheckInvariants() []string {
	var warnings []string
	type span struct {
		idx        int
		start, end uint64
	}
	var spans []span
	for i := 1; i < numSlots; i++ {
		s := h.Slots[i]
		if s.Empty() {
			continue
		}
		start := uint64(s.Offset)
		end := start + uint64(s.Size)
		if start < HeaderSize {
			warnings = append(warnings, fmt.Sprintf(
				"slot %d: offset 0x%x lies within the header", i, start))
		}
		spans = append(spans, span{idx: i, start: start, end: end})
	}
	for a := 0; a < len(spans); a++ {
		for b := a + 1; b < len(spans); b++ {
			if spans[a].start < spans[b].end && spans[b].start < spans[a].end {
				warnings = append(warnings, fmt.Sprintf(
					"slots %d and %d overlap: [0x%x,0x%x) vs [0x%x,0x%x)",
					spans[a].idx, spans[b].idx, spans[a].start, spans[a].end,
					spans[b].start, spans[b].end))
			}
		}
	}
	return warnings
}
