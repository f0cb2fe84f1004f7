// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// createWAVFile builds a canonical 44-byte-header WAV file around data.
func createWAVFile(format, sampleRate, channels, bitsPerSample int, data []byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := channels * bitsPerSample / 8

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

func pcm16(samples ...int16) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// encode writes samples with a Writer and returns the file contents.
func encode(t *testing.T, sampleRate, bitDepth, channels int, samples []float32) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := NewWriter(f, sampleRate, bitDepth, channels)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func decodeAll(t *testing.T, r io.Reader) ([]float32, *wavSource) {
	t.Helper()

	src, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var out []float32
	buf := make([]float32, 10*src.Channels())
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	return out, src.(*wavSource)
}

func TestDecoder_PCM16(t *testing.T) {
	t.Parallel()

	data := createWAVFile(formatPCM, 8000, 1, 16, pcm16(0, 16384, -16384, 32767, -32768))
	samples, src := decodeAll(t, bytes.NewReader(data))

	if src.SampleRate() != 8000 || src.Channels() != 1 || src.BitDepth() != 16 {
		t.Errorf("got %d Hz, %d channels, %d bits", src.SampleRate(), src.Channels(), src.BitDepth())
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768, -1}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecoder_Float32(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	values := []float32{0.25, -0.75, 1, 0}
	binary.Write(buf, binary.LittleEndian, values)

	samples, _ := decodeAll(t, bytes.NewReader(createWAVFile(formatFloat, 48000, 2, 32, buf.Bytes())))
	if len(samples) != len(values) {
		t.Fatalf("got %d samples, want %d", len(samples), len(values))
	}
	for i, v := range values {
		if samples[i] != v {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], v)
		}
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, bitDepth := range []int{8, 16, 24, 32} {
		t.Run(fmt.Sprintf("%d-bit", bitDepth), func(t *testing.T) {
			t.Parallel()

			const channels = 3
			in := make([]float32, 0, 300*channels)
			for f := range 300 {
				for c := range channels {
					in = append(in, float32(math.Sin(float64(f)/7+float64(c))))
				}
			}

			samples, src := decodeAll(t, bytes.NewReader(encode(t, 22050, bitDepth, channels, in)))
			if src.Channels() != channels || src.SampleRate() != 22050 {
				t.Fatalf("got %d channels at %d Hz", src.Channels(), src.SampleRate())
			}
			if len(samples) != len(in) {
				t.Fatalf("got %d samples, want %d", len(samples), len(in))
			}

			tol := 2 / math.Pow(2, float64(bitDepth-1))
			for i := range in {
				if d := math.Abs(float64(samples[i] - in[i])); d > max(tol, 1e-6) {
					t.Fatalf("%d-bit: samples[%d] = %v, want %v", bitDepth, i, samples[i], in[i])
				}
			}
		})
	}
}

// onlyReader hides the Seek method of its reader.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(formatPCM, 16000, 2, 16, pcm16(1, 2, 3, 4))
	samples, src := decodeAll(t, onlyReader{bytes.NewReader(data)})

	if src.Channels() != 2 || len(samples) != 4 {
		t.Errorf("got %d channels and %d samples", src.Channels(), len(samples))
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotWavFile},
		{"not riff", []byte("this is definitely not a wave file header...."), ErrNotWavFile},
		{"riff header only", []byte("RIFF\x04\x00\x00\x00WAVE"), ErrNotWavFile},
		{"truncated fmt", createWAVFile(formatPCM, 8000, 1, 16, nil)[:20], ErrNotWavFile},
		{"12-bit", createWAVFile(formatPCM, 8000, 1, 12, make([]byte, 30)), ErrUnsupportedBitDepth},
		{"64-bit float", createWAVFile(formatFloat, 8000, 1, 64, make([]byte, 64)), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_EmptyData(t *testing.T) {
	t.Parallel()

	samples, _ := decodeAll(t, bytes.NewReader(encode(t, 8000, 16, 2, nil)))
	if len(samples) != 0 {
		t.Errorf("got %d samples from an empty file", len(samples))
	}
}

func TestDecoder_OddDstLength(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(formatPCM, 8000, 2, 16, pcm16(1, 2, 3, 4, 5, 6))))
	if err != nil {
		t.Fatal(err)
	}

	// Only whole frames are returned.
	n, err := src.ReadSamples(make([]float32, 5))
	if n != 4 || err != nil {
		t.Errorf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}
}
