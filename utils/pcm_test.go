// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloatToPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    float32
		bitDepth int
		want     int
	}{
		{name: "zero 16-bit", input: 0, bitDepth: 16, want: 0},
		{name: "full positive 16-bit", input: 1, bitDepth: 16, want: math.MaxInt16},
		{name: "full negative 16-bit", input: -1, bitDepth: 16, want: math.MinInt16},
		{name: "clamp above 16-bit", input: 2.5, bitDepth: 16, want: math.MaxInt16},
		{name: "clamp below 16-bit", input: -3, bitDepth: 16, want: math.MinInt16},
		{name: "half negative 16-bit", input: -0.5, bitDepth: 16, want: -16384},
		{name: "full positive 8-bit", input: 1, bitDepth: 8, want: math.MaxInt8},
		{name: "full negative 24-bit", input: -1, bitDepth: 24, want: -8388608},
		{name: "full positive 24-bit", input: 1, bitDepth: 24, want: 8388607},
		{name: "unknown depth behaves as 16-bit", input: 1, bitDepth: 12, want: math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FloatToPCM(tt.input, tt.bitDepth); got != tt.want {
				t.Errorf("FloatToPCM(%v, %d) = %d, want %d", tt.input, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestPCMToFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    int
		bitDepth int
		want     float32
	}{
		{name: "zero", input: 0, bitDepth: 16, want: 0},
		{name: "min 16-bit", input: math.MinInt16, bitDepth: 16, want: -1},
		{name: "half 16-bit", input: 16384, bitDepth: 16, want: 0.5},
		{name: "min 24-bit", input: -8388608, bitDepth: 24, want: -1},
		{name: "quarter 8-bit", input: 32, bitDepth: 8, want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PCMToFloat(tt.input, tt.bitDepth); got != tt.want {
				t.Errorf("PCMToFloat(%d, %d) = %v, want %v", tt.input, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestPCMRoundTrip(t *testing.T) {
	t.Parallel()

	for _, depth := range []int{8, 16, 24, 32} {
		for _, x := range []float32{-1, -0.75, -0.25, 0, 0.25, 0.75} {
			got := PCMToFloat(FloatToPCM(x, depth), depth)
			step := 1 / PCMScale(depth)
			if math.Abs(float64(got-x)) > float64(2*step)+1e-6 {
				t.Errorf("depth %d: round trip of %v = %v", depth, x, got)
			}
		}
	}
}
