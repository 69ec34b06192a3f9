// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package textui formats numbers for log output using locale-aware
// thousands separators and IEC byte-size prefixes. It never touches the
// manifest or `info` dumper output, which follow their own fixed
// plain-decimal/hex formats and are written with plain fmt verbs instead.
package textui

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/OpenNoah/NoahSplit/lib/fmtutil"
)

var printer = message.NewPrinter(language.English)

// Fprintf is like fmt.Fprintf, but applies message.Printer's locale
// extensions (thousands separators etc.) to numeric verbs.
func Fprintf(w io.Writer, key string, a ...any) (n int, err error) {
	return printer.Fprintf(w, key, a...)
}

// Sprintf is like fmt.Sprintf, but applies message.Printer's locale
// extensions to numeric verbs.
func Sprintf(key string, a ...any) string {
	return printer.Sprintf(key, a...)
}

// Humanized wraps a value so that formatting it with plain fmt verbs
// still gets message.Printer's locale extensions (e.g. thousands
// separators in a logged byte count).
func Humanized(x any) any {
	return humanized{val: x}
}

type humanized struct {
	val any
}

var (
	_ fmt.Formatter = humanized{}
	_ fmt.Stringer  = humanized{}
)

func (h humanized) Format(f fmt.State, verb rune) {
	printer.Fprintf(f, fmtutil.FmtStateString(f, verb), h.val)
}

func (h humanized) String() string {
	return fmt.Sprint(h)
}

// Portion renders a fraction N/D as a percentage plus the exact
// fractional value, e.g. "12% (3/25)".
type Portion[T constraints.Integer] struct {
	N, D T
}

var _ fmt.Stringer = Portion[int]{}

func (p Portion[T]) String() string {
	pct := float64(1)
	if p.D > 0 {
		pct = float64(p.N) / float64(p.D)
	}
	return printer.Sprintf("%v (%v/%v)", number.Percent(pct), uint64(p.N), uint64(p.D))
}

type iec[T constraints.Integer | constraints.Float] struct {
	Val  T
	Unit string
}

var (
	_ fmt.Formatter = iec[int]{}
	_ fmt.Stringer  = iec[int]{}
)

// IEC renders x with an IEC binary-prefix (Ki/Mi/Gi/...), e.g.
// IEC(2048, "B") -> "2KiB". Used to log segment/section sizes.
func IEC[T constraints.Integer | constraints.Float](x T, unit string) iec[T] {
	return iec[T]{Val: x, Unit: unit}
}

var iecPrefixes = []string{"Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi", "Yi"}

func (v iec[T]) Format(f fmt.State, verb rune) {
	var prefix string
	y := math.Abs(float64(v.Val))
	for i := 0; y > 1024 && i <= len(iecPrefixes); i++ {
		y /= 1024
		prefix = iecPrefixes[i]
	}
	if v.Val < 0 {
		y = -y
	}
	printer.Fprintf(f, fmtutil.FmtStateString(f, verb)+"%s%s", number.Decimal(y), prefix, v.Unit)
}

func (v iec[T]) String() string {
	return fmt.Sprint(v)
}
