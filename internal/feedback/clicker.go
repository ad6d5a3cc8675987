package feedback

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/tangle/internal/ring"
)

// Config selects the click played when the ring's active slot changes.
type Config struct {
	Enabled bool    `yaml:"enabled"`
	Sample  string  `yaml:"sample"` // .mp3, .wav, .ogg or .flac; empty synthesizes a tick
	Volume  float64 `yaml:"volume"`
}

func DefaultConfig() Config {
	return Config{Enabled: true, Volume: 0.5}
}

const minInterval = 35 * time.Millisecond

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Clicker plays a short click on active slot changes. It stands in for
// haptic feedback on hosts without a vibration motor.
type Clicker struct {
	ring.NopBridge

	ctx    *oto.Context
	pcm    []byte
	volume float64
	logger *slog.Logger

	mu     sync.Mutex
	player *oto.Player
	last   time.Time
	now    func() time.Time
}

// New opens the audio device and prepares the click. A disabled config
// returns a Clicker that stays silent.
func New(cfg Config, logger *slog.Logger) (*Clicker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Clicker{volume: clampVolume(cfg.Volume), logger: logger, now: time.Now}
	if !cfg.Enabled {
		return c, nil
	}

	if cfg.Sample != "" {
		pcm, err := LoadSample(cfg.Sample)
		if err != nil {
			return nil, err
		}
		c.pcm = pcm
	} else {
		c.pcm = synthClick(2200, 0.025)
	}

	ctx, err := initOto()
	if err != nil {
		return nil, err
	}
	c.ctx = ctx
	return c, nil
}

// OnActiveChange plays the click, dropping clicks closer together than
// minInterval so fast spins do not smear into a buzz.
func (c *Clicker) OnActiveChange(index int) {
	if c.ctx == nil || len(c.pcm) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.last) < minInterval {
		return
	}
	c.last = now

	if c.player != nil && c.player.IsPlaying() {
		c.player.Pause()
	}
	c.player = c.ctx.NewPlayer(bytes.NewReader(c.pcm))
	c.player.SetVolume(c.volume)
	c.player.Play()
	c.logger.Debug("feedback: click", slog.Int("index", index))
}

// Enabled reports whether clicks reach an audio device.
func (c *Clicker) Enabled() bool { return c.ctx != nil }

// Close stops any click in flight.
func (c *Clicker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.Pause()
		c.player = nil
	}
}

func clampVolume(v float64) float64 {
	if !(v >= 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
