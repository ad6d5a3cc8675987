package feedback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bytesPerSec  = sampleRate * channelCount * 2

	// Clicks longer than this are truncated.
	maxSampleBytes = bytesPerSec / 2
)

// pcm is decoded interleaved 16-bit audio at its source rate.
type pcm struct {
	samples  []int16
	channels int
	rate     int
}

// LoadSample decodes a short click sound into 44.1 kHz 16-bit stereo PCM.
// The format is picked from the file extension.
func LoadSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src pcm
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		src, err = decodeMP3(f)
	case ".wav":
		src, err = decodeWAV(f)
	case ".ogg":
		src, err = decodeOGG(f)
	case ".flac":
		src, err = decodeFLAC(f)
	default:
		return nil, fmt.Errorf("unsupported click format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	out := src.toStereo44k()
	if len(out) == 0 {
		return nil, fmt.Errorf("decoding %s: no audio frames", filepath.Base(path))
	}
	return out, nil
}

func decodeMP3(r io.Reader) (pcm, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return pcm{}, err
	}
	raw, err := io.ReadAll(io.LimitReader(dec, maxSampleBytes*4))
	if err != nil {
		return pcm{}, err
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return pcm{samples: samples, channels: 2, rate: dec.SampleRate()}, nil
}

func decodeWAV(r io.ReadSeeker) (pcm, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return pcm{}, errors.New("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		switch {
		case bitDepth == 8:
			// 8-bit WAV is unsigned.
			s = (s - 128) << 8
		case bitDepth > 16:
			s >>= bitDepth - 16
		}
		samples[i] = clamp16(s)
	}
	return pcm{samples: samples, channels: int(dec.NumChans), rate: int(dec.SampleRate)}, nil
}

func decodeOGG(r io.Reader) (pcm, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return pcm{}, err
	}
	samples := make([]int16, len(data))
	for i, s := range data {
		samples[i] = clamp16(int(math.Round(float64(s) * 32767)))
	}
	return pcm{samples: samples, channels: format.Channels, rate: format.SampleRate}, nil
}

func decodeFLAC(r io.Reader) (pcm, error) {
	stream, err := flac.New(r)
	if err != nil {
		return pcm{}, err
	}
	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)

	var samples []int16
	for len(samples)*2 < maxSampleBytes*4 {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm{}, err
		}
		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				s := int(frame.Subframes[ch].Samples[i])
				switch {
				case bps > 16:
					s >>= bps - 16
				case bps < 16:
					s <<= 16 - bps
				}
				samples = append(samples, clamp16(s))
			}
		}
	}
	return pcm{samples: samples, channels: channels, rate: int(info.SampleRate)}, nil
}

// toStereo44k resamples (nearest frame) and remaps channels to the
// output format, returning little-endian bytes.
func (p pcm) toStereo44k() []byte {
	if p.channels < 1 || p.rate < 1 {
		return nil
	}
	srcFrames := len(p.samples) / p.channels
	dstFrames := int(int64(srcFrames) * sampleRate / int64(p.rate))
	if limit := maxSampleBytes / 4; dstFrames > limit {
		dstFrames = limit
	}

	out := make([]byte, dstFrames*4)
	for i := range dstFrames {
		src := int(int64(i) * int64(p.rate) / sampleRate)
		if src >= srcFrames {
			src = srcFrames - 1
		}
		left := p.samples[src*p.channels]
		right := left
		if p.channels > 1 {
			right = p.samples[src*p.channels+1]
		}
		binary.LittleEndian.PutUint16(out[i*4:], uint16(left))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(right))
	}
	return out
}

// synthClick is a short decaying sine used when no sample file is set.
func synthClick(freq float64, dur float64) []byte {
	n := int(dur * sampleRate)
	out := make([]byte, n*4)
	for i := range n {
		t := float64(i) / sampleRate
		env := math.Exp(-t * 180)
		v := int16(math.Sin(2*math.Pi*freq*t) * env * 0.6 * 32767)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(v))
	}
	return out
}

func clamp16(s int) int16 {
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
