// Command noahsplit-info dumps a FAMILY-A header's tag and package
// slots without writing a manifest file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OpenNoah/NoahSplit/internal/cli"
	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/fwimage"
)

func main() {
	logger := logrus.New()
	var debug bool

	cmd := &cobra.Command{
		Use:           "noahsplit-info [flags] IN",
		Short:         "Print a FAMILY-A header's tag and package slots",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "also spew.Dump the decoded header to stderr")
	cli.AddLogLevelFlag(cmd.Flags(), logger)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(path string, debug bool) error {
	img, err := os.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	buf := make([]byte, fwimage.HeaderSize)
	if _, err := io.ReadFull(img, buf); err != nil {
		return fwimage.ErrTruncated{Where: "header"}
	}
	if err := bitcodec.Swap(buf); err != nil {
		return err
	}
	h, err := fwimage.DecodeHeaderA(buf)
	if err != nil {
		return err
	}
	if debug {
		spew.Fdump(os.Stderr, h)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t0x%08x\n", renderTag(h.Tag), h.TagVer)
	for i := 1; i <= 31; i++ {
		s := h.Slots[i]
		if s.Empty() {
			continue
		}
		fmt.Fprintf(w, "%d\t0x%08x\t%s\t%s\t0x%08x\t0x%08x\t0x%08x\n",
			i, s.Ver, s.Dev, fwimage.FstypeLabel(s.Fstype), s.Offset, s.Size, s.Crc)
	}
	return nil
}

// renderTag renders a NUL-trimmed tag as plain ASCII, falling back to
// \xNN escapes for any byte outside the printable range so a
// corrupt or unexpected tag never writes raw control bytes to the
// terminal.
func renderTag(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] < 32 || tag[i] > 126 {
			var b strings.Builder
			for j := 0; j < len(tag); j++ {
				c := tag[j]
				if c < 32 || c > 126 {
					fmt.Fprintf(&b, "\\x%02x", c)
				} else {
					b.WriteByte(c)
				}
			}
			return b.String()
		}
	}
	return tag
}
