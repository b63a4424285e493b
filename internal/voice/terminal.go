package voice

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LineRecognizer turns lines read from a terminal into final speech
// segments. It stands in for platform speech capture in the CLI.
type LineRecognizer struct {
	mu      sync.Mutex
	reader  *bufio.Scanner
	sink    func(text string, final bool)
	running bool
	done    chan struct{}
}

// NewLineRecognizer creates a recognizer reading from r.
func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{reader: bufio.NewScanner(r)}
}

// Bind sets the segment sink. Must be called before Start.
func (l *LineRecognizer) Bind(sink func(text string, final bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = sink
}

// Start begins forwarding lines as final segments.
func (l *LineRecognizer) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil
	}
	if l.sink == nil {
		return fmt.Errorf("recognizer has no sink")
	}
	l.running = true
	if l.done == nil {
		l.done = make(chan struct{})
		go l.loop()
	}
	return nil
}

// Stop pauses forwarding. The underlying reader keeps its position.
func (l *LineRecognizer) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
}

func (l *LineRecognizer) loop() {
	defer close(l.done)
	for l.reader.Scan() {
		line := l.reader.Text()
		l.mu.Lock()
		running := l.running
		sink := l.sink
		l.mu.Unlock()
		if running && line != "" {
			sink(line, true)
		}
	}
}

// FilePlayer "plays" synthesized audio by writing it to WAV files in a
// directory. Used where no audio device is available.
type FilePlayer struct {
	mu         sync.Mutex
	dir        string
	sampleRate int
	last       string
	notify     func(path string)
}

// NewFilePlayer creates a player writing into dir. sampleRate describes the
// PCM handed to Play; zero falls back to 24kHz.
func NewFilePlayer(dir string, sampleRate int, notify func(path string)) *FilePlayer {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &FilePlayer{dir: dir, sampleRate: sampleRate, notify: notify}
}

// Play writes pcm as a mono WAV file.
func (p *FilePlayer) Play(ctx context.Context, pcm []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(p.dir, fmt.Sprintf("reply-%d.wav", time.Now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeWAV(f, pcm, p.sampleRate); err != nil {
		return err
	}

	p.mu.Lock()
	p.last = path
	notify := p.notify
	p.mu.Unlock()

	if notify != nil {
		notify(path)
	}
	return nil
}

// Stop is a no-op; writes are not interruptible mid-file.
func (p *FilePlayer) Stop() {}

// LastFile returns the most recently written file path.
func (p *FilePlayer) LastFile() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// writeWAV wraps single-channel 16-bit PCM in a RIFF/WAVE container.
func writeWAV(w io.Writer, pcm []byte, sampleRate int) error {
	var (
		channels      = 1
		bitsPerSample = 16
		byteRate      = sampleRate * channels * bitsPerSample / 8
		blockAlign    = channels * bitsPerSample / 8
	)

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+len(pcm))); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVEfmt ")); err != nil {
		return err
	}
	for _, v := range []interface{}{
		uint32(16), // fmt chunk size
		uint16(1),  // PCM
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(pcm))); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
