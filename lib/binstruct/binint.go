// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package binstruct

import (
	"reflect"

	"github.com/OpenNoah/NoahSplit/lib/binstruct/binint"
)

// Re-exported so callers only need to import this package.
type (
	U8    = binint.U8
	U32le = binint.U32le
)

var intKind2Type = map[reflect.Kind]reflect.Type{
	reflect.Uint8:  reflect.TypeOf(U8(0)),
	reflect.Uint32: reflect.TypeOf(U32le(0)),
}
