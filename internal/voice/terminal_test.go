package voice

import (
	"context"
	"encoding/binary"
	"os"
	"testing"
)

func playerFile(t *testing.T, sampleRate int) []byte {
	t.Helper()
	p := NewFilePlayer(t.TempDir(), sampleRate, nil)
	if err := p.Play(context.Background(), []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := os.ReadFile(p.LastFile())
	if err != nil {
		t.Fatalf("reading wav: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("wav file too short: %d bytes", len(data))
	}
	return data
}

func TestFilePlayerWritesConfiguredSampleRate(t *testing.T) {
	data := playerFile(t, 16000)

	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != 4 {
		t.Errorf("data chunk size = %d, want 4", got)
	}
}

func TestFilePlayerDefaultSampleRate(t *testing.T) {
	data := playerFile(t, 0)

	if got := binary.LittleEndian.Uint32(data[24:28]); got != 24000 {
		t.Errorf("sample rate = %d, want 24000", got)
	}
}
