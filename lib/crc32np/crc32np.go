// Package crc32np implements the non-inverted-accumulator CRC-32
// variant used throughout the firmware formats, plus the
// filesystem-aware streaming drivers (plain, UBIFS, NAND) that decide
// which bytes of a block actually enter the checksum.
package crc32np

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/OpenNoah/NoahSplit/internal/bufpool"
)

// ChunkSize is the buffer size used by the Plain streaming driver.
const ChunkSize = 4 * 1024 * 1024

var plainBufPool bufpool.Pool

// Sum computes the NP-variant CRC-32 of b: the accumulator starts and
// ends in non-inverted form, so SumAppend(Sum(a), b) equals Sum(a+b)
// for any split of a concatenated buffer.
func Sum(b []byte) uint32 {
	return SumAppend(0, b)
}

// SumAppend folds b into a running non-inverted accumulator crc,
// returning the updated accumulator. The zero value of crc is the
// correct starting point.
func SumAppend(crc uint32, b []byte) uint32 {
	return ^crc32.Update(^crc, crc32.IEEETable, b)
}

// Plain streams r in ChunkSize blocks, folding every byte into the
// CRC, stopping when fewer than 4 bytes remain.
func Plain(r io.Reader) (uint32, error) {
	var crc uint32
	buf := plainBufPool.Get(ChunkSize)
	defer plainBufPool.Put(buf)
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			crc = SumAppend(crc, buf[:n])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF || n < 4 {
			return crc, nil
		}
		if err != nil {
			return crc, err
		}
	}
}

// UBIFS streams r in blocks of lebSize+4 bytes. The first 4 bytes of
// each block (an unmapped-LEB counter) are skipped; the remaining
// lebSize bytes are folded into the CRC unless they are entirely
// 0xFF, which marks an unmapped LEB. Stops when fewer than 4 bytes
// remain.
func UBIFS(r io.Reader, lebSize int) (uint32, error) {
	var crc uint32
	blockSize := lebSize + 4
	buf := make([]byte, blockSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			leb := buf[4:n]
			if !allFF(leb) {
				crc = SumAppend(crc, leb)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF || n < 4 {
			return crc, nil
		}
		if err != nil {
			return crc, err
		}
	}
}

// NAND streams r in blocks of page+oob bytes, folding only the first
// page bytes of each block into the CRC; the trailing oob bytes are
// ignored. Stops when fewer than 4 bytes remain.
func NAND(r io.Reader, page, oob int) (uint32, error) {
	var crc uint32
	blockSize := page + oob
	buf := make([]byte, blockSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			take := n
			if take > page {
				take = page
			}
			crc = SumAppend(crc, buf[:take])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF || n < 4 {
			return crc, nil
		}
		if err != nil {
			return crc, err
		}
	}
}

func allFF(b []byte) bool {
	return bytes.Count(b, []byte{0xFF}) == len(b)
}
