// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_Header(t *testing.T) {
	t.Parallel()

	data := encode(t, 44100, 16, 2, []float32{0, 0, 0.5, -0.5})

	if !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}

	i := bytes.Index(data, []byte("fmt "))
	if i < 0 {
		t.Fatal("no fmt chunk")
	}
	fmtChunk := data[i+8:]
	if got := binary.LittleEndian.Uint16(fmtChunk[2:4]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(fmtChunk[4:8]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint16(fmtChunk[14:16]); got != 16 {
		t.Errorf("bit depth = %d, want 16", got)
	}

	j := bytes.Index(data, []byte("data"))
	if j < 0 {
		t.Fatal("no data chunk")
	}
	if got := binary.LittleEndian.Uint32(data[j+4 : j+8]); got != 8 {
		t.Errorf("data size = %d, want 8", got)
	}
	if got := int16(binary.LittleEndian.Uint16(data[j+12 : j+14])); got != 16383 {
		t.Errorf("third sample = %d, want 16383", got)
	}
}

func TestWriter_WriteFrames(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "planar.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := NewWriter(f, 8000, 16, 2)
	if err != nil {
		t.Fatal(err)
	}

	planar := [][]float32{{0.5, 0.5, 0.5, 9}, {-0.5, -0.5, -0.5, 9}}
	if err := w.WriteFrames(planar, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrames(planar, 2); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", w.Frames())
	}

	if err := w.WriteFrames(planar[:1], 1); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("one buffer for two channels: %v", err)
	}
	if err := w.WriteSamples(make([]float32, 3)); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("odd sample count: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := w.WriteFrames(planar, 1); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("write after close: %v", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	samples, _ := decodeAll(t, f)
	if len(samples) != 10 || samples[0] <= 0.49 || samples[1] >= -0.49 {
		t.Errorf("decoded %v", samples)
	}
}

func TestWriter_Clips(t *testing.T) {
	t.Parallel()

	samples, _ := decodeAll(t, bytes.NewReader(encode(t, 8000, 16, 1, []float32{2, -3})))
	if samples[0] != 32767.0/32768 || samples[1] != -1 {
		t.Errorf("clipped samples = %v", samples)
	}
}

func TestNewWriter_Errors(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewWriter(f, 8000, 12, 1); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("12-bit: %v", err)
	}
	if _, err := NewWriter(f, 8000, 16, 0); !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("no channels: %v", err)
	}
	if _, err := NewWriter(f, 0, 16, 1); !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("no sample rate: %v", err)
	}
}
