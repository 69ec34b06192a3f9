// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package binint provides fixed-width integer types that know how to
// marshal/unmarshal themselves to their wire-format byte representation.
// NoahSplit only ever needs little-endian words and bytes, so this is
// trimmed to those two kinds; FAMILY-B's descriptor arrays use U32le.
package binint

import (
	"encoding/binary"

	"github.com/OpenNoah/NoahSplit/lib/binstruct/binutil"
)

// U8 is a single byte.
type U8 uint8

func (U8) BinaryStaticSize() int            { return 1 }
func (x U8) MarshalBinary() ([]byte, error) { return []byte{byte(x)}, nil }

func (x *U8) UnmarshalBinary(dat []byte) (int, error) {
	if err := binutil.NeedNBytes(dat, 1); err != nil {
		return 0, err
	}
	*x = U8(dat[0])
	return 1, nil
}

// U32le is a little-endian uint32, the word size of every integer field
// in both FAMILY-A and FAMILY-B.
type U32le uint32

func (U32le) BinaryStaticSize() int { return 4 }

func (x U32le) MarshalBinary() ([]byte, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(x))
	return buf[:], nil
}

func (x *U32le) UnmarshalBinary(dat []byte) (int, error) {
	if err := binutil.NeedNBytes(dat, 4); err != nil {
		return 0, err
	}
	*x = U32le(binary.LittleEndian.Uint32(dat))
	return 4, nil
}
