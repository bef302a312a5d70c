package audio

import (
	"encoding/binary"
	"testing"
)

func TestChunkerRegroupsReads(t *testing.T) {
	// 16kHz mono, 10ms chunks = 160 samples per chunk.
	c := NewChunker(16000, 1, 10)

	if chunks := c.Push(make([]int16, 100)); chunks != nil {
		t.Fatalf("expected no complete chunk after 100 samples, got %d", len(chunks))
	}
	chunks := c.Push(make([]int16, 300))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks from 400 buffered samples, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) != 160 {
			t.Errorf("chunk %d has %d samples, want 160", i, len(chunk))
		}
	}

	c.Reset()
	if chunks := c.Push(make([]int16, 159)); chunks != nil {
		t.Errorf("expected no chunk after reset with 159 samples, got %d", len(chunks))
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{0, 100, -100, 32767}
	wav := EncodeWAV(samples, 16000)

	if len(wav) != 44+len(samples)*2 {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(samples)*2)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE markers")
	}
	if sr := binary.LittleEndian.Uint32(wav[24:28]); sr != 16000 {
		t.Errorf("sample rate = %d, want 16000", sr)
	}
	if ds := binary.LittleEndian.Uint32(wav[40:44]); ds != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", ds, len(samples)*2)
	}
}

func TestRMS(t *testing.T) {
	if rms := RMS(nil); rms != 0 {
		t.Errorf("RMS(nil) = %f, want 0", rms)
	}
	if rms := RMS(make([]int16, 160)); rms != 0 {
		t.Errorf("RMS(silence) = %f, want 0", rms)
	}
	loud := make([]int16, 160)
	for i := range loud {
		loud[i] = 16384
	}
	if rms := RMS(loud); rms < 0.4 || rms > 0.6 {
		t.Errorf("RMS(half scale) = %f, want ~0.5", rms)
	}
}
