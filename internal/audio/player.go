// Package audio plays the forecast clips through the default sound output.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"cloudpico-kiosk/internal/hw"
)

const (
	DefaultSampleRate = 44100

	pollInterval = 50 * time.Millisecond
)

// Player decodes MP3 clips from a directory. Only one oto context may exist per
// process, so build a single Player at startup.
type Player struct {
	dir        string
	sampleRate int
	otoCtx     *oto.Context
}

func NewPlayer(dir string, sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, hw.Fault("speaker", "open output", err)
	}
	<-ready
	return &Player{dir: dir, sampleRate: sampleRate, otoCtx: otoCtx}, nil
}

// ClipPath is where the asset for a clip name lives.
func ClipPath(dir, clip string) string {
	return filepath.Join(dir, clip+".mp3")
}

// PlayAndWait blocks until the clip has played to the end. Cancelling ctx
// pauses playback and returns ctx.Err().
func (p *Player) PlayAndWait(ctx context.Context, clip string) error {
	f, dec, err := openClip(p.dir, clip, p.sampleRate)
	if err != nil {
		return err
	}
	defer f.Close()

	player := p.otoCtx.NewPlayer(dec)
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		return hw.Fault("speaker", "play "+clip, err)
	}
	return nil
}

func openClip(dir, clip string, sampleRate int) (*os.File, *mp3.Decoder, error) {
	path := ClipPath(dir, clip)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, hw.Fault("speaker", "open clip", err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, nil, hw.Fault("speaker", "decode "+path, err)
	}
	if dec.SampleRate() != sampleRate {
		f.Close()
		return nil, nil, hw.Fault("speaker", "decode "+path,
			fmt.Errorf("clip sample rate %d does not match output %d", dec.SampleRate(), sampleRate))
	}
	return f, dec, nil
}
