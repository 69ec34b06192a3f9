package fwimage

// PatternB is the fixed 64-byte XOR key used to descramble FAMILY-B's
// fixed sections and full-variant compressed chunks.
var PatternB = [64]byte{
	0x38, 0x20, 0x08, 0x31, 0x19, 0x01, 0x2A, 0x12, 0x3B, 0x23, 0x2E, 0x16, 0x3D, 0x25, 0x0D, 0x34,
	0x1C, 0x04, 0x0B, 0x10, 0x00, 0x1B, 0x28, 0x10, 0x39, 0x21, 0x09, 0x32, 0x1A, 0x02, 0x2B, 0x36,
	0x1E, 0x06, 0x2D, 0x15, 0x3C, 0x24, 0x0C, 0x13, 0x0D, 0x17, 0x02, 0x30, 0x18, 0x00, 0x29, 0x11,
	0x3A, 0x22, 0x0A, 0x33, 0x3E, 0x26, 0x0E, 0x35, 0x1D, 0x05, 0x2C, 0x14, 0x1B, 0x03, 0x0A, 0x04,
}
