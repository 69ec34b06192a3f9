package fwimage

import (
	"bytes"

	"github.com/OpenNoah/NoahSplit/lib/crc32np"
)

// computeCRC runs the CRC driver appropriate for fstype over data,
// resolving UBIFS LEB size or NAND geometry from tag as needed.
func computeCRC(data []byte, fstype uint32, tag string) (uint32, error) {
	switch fstype {
	case FstypeUbifs:
		return crc32np.UBIFS(bytes.NewReader(data), LebSize(tag))
	case FstypeNand:
		geo, err := NandGeometryFor(tag)
		if err != nil {
			return 0, err
		}
		return crc32np.NAND(bytes.NewReader(data), geo.Page, geo.OOB)
	default:
		return crc32np.Plain(bytes.NewReader(data))
	}
}
