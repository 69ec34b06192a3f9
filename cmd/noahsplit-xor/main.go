// Command noahsplit-xor descrambles (or scrambles — the codec is its
// own inverse) a byte range of a file against a named or literal
// repeating pattern.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OpenNoah/NoahSplit/internal/cli"
	"github.com/OpenNoah/NoahSplit/lib/fwimage"
)

const chunkSize = 4 * 1024 * 1024

func main() {
	logger := logrus.New()

	var (
		patternFlag string
		offsetFlag  string
		sizeFlag    string
	)

	cmd := &cobra.Command{
		Use:           "noahsplit-xor [flags] IN OUT",
		Short:         "XOR a byte range of a file against a repeating pattern",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, err := resolvePattern(patternFlag)
			if err != nil {
				return err
			}
			offset, err := parseIntFlag(offsetFlag)
			if err != nil {
				return fmt.Errorf("--offset: %w", err)
			}
			size, err := parseIntFlag(sizeFlag)
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}
			return run(args[0], args[1], pattern, offset, size)
		},
	}
	cmd.Flags().StringVar(&patternFlag, "pattern", "np890", `pattern: "np890" or "hex:<hexbytes>"`)
	cmd.Flags().StringVar(&offsetFlag, "offset", "0", "start offset into IN (decimal or 0x-prefixed hex)")
	cmd.Flags().StringVar(&sizeFlag, "size", "0", "bytes to copy, or 0 to copy to EOF (decimal or 0x-prefixed hex)")
	cli.AddLogLevelFlag(cmd.Flags(), logger)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolvePattern(s string) ([]byte, error) {
	switch {
	case s == "np890":
		return fwimage.PatternB[:], nil
	case strings.HasPrefix(s, "hex:"):
		b, err := hex.DecodeString(strings.TrimPrefix(s, "hex:"))
		if err != nil {
			return nil, fmt.Errorf("bad hex pattern: %w", err)
		}
		if len(b) == 0 || len(b)%8 != 0 {
			return nil, fmt.Errorf("hex pattern must be a non-empty multiple of 8 bytes, got %d", len(b))
		}
		return b, nil
	default:
		return nil, fmt.Errorf(`unknown --pattern %q (want "np890" or "hex:<hexbytes>")`, s)
	}
}

func parseIntFlag(s string) (int64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// run copies size bytes (or to EOF, if size is 0) of in starting at
// offset to out, XORing against pattern. The pattern starts at byte 0
// of the copied range (the byte at offset), and its phase is kept
// across chunk boundaries, not reset per chunk.
func run(inPath, outPath string, pattern []byte, offset, size int64) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	if _, err := in.Seek(offset, io.SeekStart); err != nil {
		return fwimage.ErrNoSeek{Offset: offset, Err: err}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var r io.Reader = in
	if size > 0 {
		r = io.LimitReader(in, size)
	}

	buf := make([]byte, chunkSize)
	var pos int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			plen := int64(len(pattern))
			for i := range chunk {
				chunk[i] ^= pattern[(pos+int64(i))%plen]
			}
			pos += int64(n)
			if _, werr := out.Write(chunk); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
