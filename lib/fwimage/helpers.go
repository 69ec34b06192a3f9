package fwimage

import "fmt"

func align512(n int) int {
	return (n + 511) &^ 511
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// deviceDestPath renders a FAMILY-B device descriptor's dest field as
// the source's destination path, from which the extracted filename
// is derived by taking its basename.
func deviceDestPath(dest uint32) string {
	switch {
	case dest <= 7:
		return fmt.Sprintf("/dev/_nand%d", dest)
	case dest == 8:
		return "/tmp/sysdata.img"
	default:
		return fmt.Sprintf("unknown%d.bin", dest)
	}
}
