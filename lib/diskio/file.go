// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package diskio provides a small seekable-file abstraction used by the
// firmware image codecs. Unlike a general-purpose multi-volume filesystem
// (which must track separate logical and physical address spaces), every
// format this module handles lives in a single byte-offset space, so the
// address type is a plain int64 rather than a generic ~int64 parameter.
package diskio

import (
	"io"
	"os"
)

// File is the minimal random-access file interface the codecs need.
type File interface {
	Name() string
	Size() int64
	Close() error
	ReadAt(p []byte, off int64) (n int, err error)
	WriteAt(p []byte, off int64) (n int, err error)
}

var (
	_ io.ReaderAt = File(nil)
	_ io.WriterAt = File(nil)
)

// OSFile adapts *os.File to File, caching nothing and reflecting the
// underlying file's current size on every call.
type OSFile struct {
	*os.File
}

var _ File = (*OSFile)(nil)

func (f *OSFile) Size() int64 {
	fi, err := f.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}

// Open opens name with the given flag/perm and wraps it as a File.
func Open(name string, flag int, perm os.FileMode) (*OSFile, error) {
	fh, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &OSFile{File: fh}, nil
}

// SequentialReader turns a File into a stateful io.Reader/io.ByteReader/
// io.Seeker, for code that walks a format front-to-back (FAMILY-B's
// descriptor stream) and seeks to the format's fixed offsets in between.
type SequentialReader struct {
	inner File
	pos   int64
}

var (
	_ io.Reader     = (*SequentialReader)(nil)
	_ io.ByteReader = (*SequentialReader)(nil)
	_ io.Seeker     = (*SequentialReader)(nil)
)

func NewSequentialReader(f File) *SequentialReader {
	return &SequentialReader{inner: f}
}

func (sr *SequentialReader) Read(dat []byte) (n int, err error) {
	n, err = sr.inner.ReadAt(dat, sr.pos)
	sr.pos += int64(n)
	return n, err
}

func (sr *SequentialReader) ReadByte() (byte, error) {
	var dat [1]byte
	_, err := sr.Read(dat[:])
	return dat[0], err
}

func (sr *SequentialReader) Pos() int64 { return sr.pos }

// Seek implements io.Seeker for whence values SeekStart and SeekCurrent;
// SeekEnd is resolved against the underlying file's current size.
func (sr *SequentialReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		sr.pos = offset
	case io.SeekCurrent:
		sr.pos += offset
	case io.SeekEnd:
		sr.pos = sr.inner.Size() + offset
	default:
		return 0, os.ErrInvalid
	}
	return sr.pos, nil
}
