// SPDX-License-Identifier: EPL-2.0

package utils

// PCMScale returns the full-scale magnitude of a signed integer PCM sample of
// the given bit depth. Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// FloatToPCM converts a normalized sample to a signed integer PCM value of
// bitDepth bits. Input outside [-1, 1] is clamped.
func FloatToPCM(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Positive full scale is one step short of the magnitude.
	scale := float64(PCMScale(bitDepth))
	if x > 0 {
		return int(float64(x) * (scale - 1))
	}
	return int(float64(x) * scale)
}

// PCMToFloat converts a signed integer PCM value of bitDepth bits to a
// normalized float32 sample.
func PCMToFloat(v int, bitDepth int) float32 {
	return float32(float64(v) / float64(PCMScale(bitDepth)))
}
