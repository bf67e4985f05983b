package bitsi

// LedByte packs an LED pattern into the single output byte the device
// expects: bit i is set iff pattern[i] is true. Patterns shorter than 8
// leave the remaining bits clear; longer patterns are truncated to 8.
func LedByte(pattern []bool) byte {
	var v byte
	for i := 0; i < len(pattern) && i < 8; i++ {
		if pattern[i] {
			v |= 1 << uint(i)
		}
	}
	return v
}
