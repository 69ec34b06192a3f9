// Command noahsplit-pkg builds or unpacks a firmware image for either
// device family, dispatching on --type.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OpenNoah/NoahSplit/internal/cli"
	"github.com/OpenNoah/NoahSplit/lib/bitcodec"
	"github.com/OpenNoah/NoahSplit/lib/fwimage"
)

func main() {
	logger := logrus.New()

	var (
		typeFlag    string
		createFlag  bool
		extractFlag bool
		infoFlag    bool
		debugFlag   bool
	)

	cmd := &cobra.Command{
		Use:           "noahsplit-pkg [flags] IN OUT",
		Short:         "Build or unpack a firmware image",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logger, typeFlag, createFlag, extractFlag, infoFlag, debugFlag, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "np1000", `device family: "np1000" or "np890"`)
	cmd.Flags().BoolVar(&createFlag, "create", false, "build an image from a manifest (np1000 only)")
	cmd.Flags().BoolVar(&extractFlag, "extract", false, "write a manifest and extract payloads from an image")
	cmd.Flags().BoolVar(&infoFlag, "info", false, "write a manifest without extracting payloads")
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "with --info and --type=np1000, also spew.Dump the decoded header to stderr")
	cli.AddLogLevelFlag(cmd.Flags(), logger)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(logger *logrus.Logger, typ string, create, extract, info, debug bool, in, out string) error {
	switch {
	case create && (extract || info), extract && info:
		return fmt.Errorf("only one of --create, --extract, --info may be given")
	case create:
		if typ != "np1000" {
			return fmt.Errorf("--create is only supported for --type=np1000")
		}
		b := &fwimage.BuilderA{Logger: logger}
		return b.Build(in, out)
	case extract, info:
		switch typ {
		case "np1000":
			if debug && info {
				if err := dumpHeaderA(in); err != nil {
					return err
				}
			}
			e := &fwimage.ExtractorA{Logger: logger}
			return e.Extract(in, out, extract)
		case "np890":
			e := &fwimage.ExtractorB{Logger: logger}
			return e.Extract(in, out, extract)
		default:
			return fmt.Errorf("unknown --type %q", typ)
		}
	default:
		return fmt.Errorf("one of --create, --extract, or --info is required")
	}
}

// dumpHeaderA decodes the image's FAMILY-A header purely to spew.Dump
// it to stderr; ExtractorA.Extract performs the real decode that
// drives the manifest.
func dumpHeaderA(path string) error {
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
	spew.Fdump(os.Stderr, h)
	return nil
}
