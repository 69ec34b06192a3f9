// Package manifest parses and emits the plain-text manifest that
// mediates FAMILY-A package builds and extracts, and provides the
// lower-level line writer that FAMILY-B's descriptor dump is built on
// top of.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrBadManifest reports an unrecognised section, key, or malformed
// line, tagged with its 1-based line number.
type ErrBadManifest struct {
	Line int
	Msg  string
}

func (e ErrBadManifest) Error() string {
	return fmt.Sprintf("manifest line %d: %s", e.Line, e.Msg)
}

// Header holds the parsed contents of the manifest's [header] block.
type Header struct {
	Tag string
	Ver uint32
}

// Pkg holds the parsed contents of one effective [pkg] block (one
// with include=1).
type Pkg struct {
	Name     string // decorative only, not otherwise used
	Idx      int
	File     string
	Ver      uint32
	Dev      string
	Fstype   string
	Crc      uint32
	HasCrc   bool
	included bool
}

// Manifest is the parsed result of Parse.
type Manifest struct {
	Header Header
	Pkgs   []Pkg
}

// Parse reads a manifest from r. CRLF line endings are tolerated;
// output is always written with LF endings by Writer.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	const (
		sectionNone = iota
		sectionHeader
		sectionPkg
	)
	section := sectionNone
	var cur *Pkg

	flush := func() {
		if cur != nil {
			if cur.included {
				m.Pkgs = append(m.Pkgs, *cur)
			}
			cur = nil
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line {
		case "[header]":
			flush()
			section = sectionHeader
			continue
		case "[pkg]":
			flush()
			section = sectionPkg
			cur = &Pkg{}
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, ErrBadManifest{Line: lineNo, Msg: "expected key=value"}
		}
		key, val := line[:eq], line[eq+1:]

		switch section {
		case sectionHeader:
			switch key {
			case "tag":
				m.Header.Tag = val
			case "ver":
				v, err := parseUint32(val)
				if err != nil {
					return nil, ErrBadManifest{Line: lineNo, Msg: "bad ver: " + err.Error()}
				}
				m.Header.Ver = v
			default:
				return nil, ErrBadManifest{Line: lineNo, Msg: "unknown key in [header]: " + key}
			}
		case sectionPkg:
			switch key {
			case "name":
				cur.Name = val
			case "idx":
				v, err := strconv.Atoi(val)
				if err != nil || v < 1 || v > 31 {
					return nil, ErrBadManifest{Line: lineNo, Msg: "bad idx: " + val}
				}
				cur.Idx = v
			case "include":
				cur.included = val != "0"
			case "file":
				cur.File = val
			case "ver":
				v, err := parseUint32(val)
				if err != nil {
					return nil, ErrBadManifest{Line: lineNo, Msg: "bad ver: " + err.Error()}
				}
				cur.Ver = v
			case "dev":
				cur.Dev = val
			case "fstype":
				cur.Fstype = val
			case "crc":
				v, err := parseUint32(val)
				if err != nil {
					return nil, ErrBadManifest{Line: lineNo, Msg: "bad crc: " + err.Error()}
				}
				cur.Crc = v
				cur.HasCrc = true
			default:
				return nil, ErrBadManifest{Line: lineNo, Msg: "unknown key in [pkg]: " + key}
			}
		default:
			return nil, ErrBadManifest{Line: lineNo, Msg: "key=value outside of any section"}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return m, nil
}

func parseUint32(s string) (uint32, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// Writer emits manifest text incrementally, matching the exact
// formatting ExtractorA/B produce: LF line endings, a blank-line
// separator between blocks (none before the first), hex fields
// zero-padded to width 8 with a "0x" prefix.
type Writer struct {
	w       io.Writer
	started bool
	err     error
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (mw *Writer) sep() {
	if mw.err != nil {
		return
	}
	if mw.started {
		_, mw.err = fmt.Fprintln(mw.w)
	}
	mw.started = true
}

// WriteHeader writes the [header] block.
func (mw *Writer) WriteHeader(h Header) error {
	mw.sep()
	if mw.err != nil {
		return mw.err
	}
	_, mw.err = fmt.Fprintf(mw.w, "[header]\ntag=%s\nver=0x%08x\n", h.Tag, h.Ver)
	return mw.err
}

// PkgOut is the data ExtractorA emits for one extracted package slot.
type PkgOut struct {
	Name, File, Dev, Fstype string
	Idx                     int
	Ver, Crc                uint32
}

// WritePkg writes a [pkg] block with a trailing "# crc=" comment
// line; the comment form means the CRC is informational only and is
// never re-read by Parse as an override.
func (mw *Writer) WritePkg(p PkgOut) error {
	mw.sep()
	if mw.err != nil {
		return mw.err
	}
	_, mw.err = fmt.Fprintf(mw.w,
		"[pkg]\nname=%s\nidx=%d\ninclude=1\nfile=%s\nver=0x%08x\ndev=%s\nfstype=%s\n# crc=0x%08x\n",
		p.Name, p.Idx, p.File, p.Ver, p.Dev, p.Fstype, p.Crc)
	return mw.err
}

// WriteSection writes a bare "[name]" block header, used by
// ExtractorB's free-form descriptor dump which isn't constrained to
// the [header]/[pkg] grammar above.
func (mw *Writer) WriteSection(name string) error {
	mw.sep()
	if mw.err != nil {
		return mw.err
	}
	_, mw.err = fmt.Fprintf(mw.w, "[%s]\n", name)
	return mw.err
}

// WriteField writes a single "key=value" line.
func (mw *Writer) WriteField(key, val string) error {
	if mw.err != nil {
		return mw.err
	}
	_, mw.err = fmt.Fprintf(mw.w, "%s=%s\n", key, val)
	return mw.err
}

// WriteFieldHex writes "key=0x<8hex>".
func (mw *Writer) WriteFieldHex(key string, val uint32) error {
	return mw.WriteField(key, fmt.Sprintf("0x%08x", val))
}

// WriteComment writes a "# text" line.
func (mw *Writer) WriteComment(text string) error {
	if mw.err != nil {
		return mw.err
	}
	_, mw.err = fmt.Fprintf(mw.w, "# %s\n", text)
	return mw.err
}
