package bitmap

// PackRGB555 packs 5-bit channels into an X1R5G5B5 sample.
func PackRGB555(r, g, b uint32) uint32 {
	return (r&0x1F)<<10 | (g&0x1F)<<5 | b&0x1F
}

// UnpackRGB555 splits an X1R5G5B5 sample into its 5-bit channels.
func UnpackRGB555(v uint32) (r, g, b uint32) {
	return v >> 10 & 0x1F, v >> 5 & 0x1F, v & 0x1F
}

// PackRGB888 packs 8-bit channels into a 24 bpp sample.
func PackRGB888(r, g, b uint32) uint32 {
	return (r&0xFF)<<16 | (g&0xFF)<<8 | b&0xFF
}

// UnpackRGB888 splits a 24 bpp sample into its 8-bit channels.
func UnpackRGB888(v uint32) (r, g, b uint32) {
	return v >> 16 & 0xFF, v >> 8 & 0xFF, v & 0xFF
}

// expand5 widens a 5-bit channel to 8 bits, replicating the high bits into
// the low ones so full intensity maps to 255.
func expand5(v uint32) uint8 {
	return uint8(v<<3 | v>>2)
}
