package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-audio/aiff"
	"github.com/gopxl/beep/v2"
	beepflac "github.com/gopxl/beep/v2/flac"
	ebwav "github.com/hajimehoshi/ebiten/v2/audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// DecodeFunc turns an encoded file into a decoded source.
type DecodeFunc func(data []byte) (*Source, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]DecodeFunc{
		"wav":  decodeWAV,
		"mp3":  decodeMP3,
		"ogg":  decodeOgg,
		"oga":  decodeOgg,
		"aif":  decodeAIFF,
		"aiff": decodeAIFF,
		"flac": decodeFLAC,
	}
)

// RegisterFormat adds or replaces the decoder for a file extension.
func RegisterFormat(ext string, fn DecodeFunc) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[normalizeExt(ext)] = fn
}

// Formats lists the registered extensions.
func Formats() []string {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	out := make([]string, 0, len(decoders))
	for ext := range decoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether path has a registered extension.
func Supported(path string) bool {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	_, ok := decoders[normalizeExt(filepath.Ext(path))]
	return ok
}

// Decode picks a decoder from the extension of path.
func Decode(path string, data []byte) (*Source, error) {
	ext := normalizeExt(filepath.Ext(path))
	decodersMu.RLock()
	fn, ok := decoders[ext]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("audio: decode %q: %w", path, ErrUnknownFormat)
	}
	src, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	return src, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func decodeWAV(data []byte) (*Source, error) {
	stream, err := ebwav.DecodeWithoutResampling(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	return sourceFromS16Stereo(beep.SampleRate(stream.SampleRate()), pcm)
}

func decodeMP3(data []byte) (*Source, error) {
	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	return sourceFromS16Stereo(beep.SampleRate(dec.SampleRate()), pcm)
}

func decodeOgg(data []byte) (*Source, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	channels := format.Channels
	if channels <= 0 {
		return nil, ErrEmptySource
	}
	frames := make([][2]float64, len(samples)/channels)
	for i := range frames {
		frames[i] = frameFromChannels(channels, func(c int) float64 {
			return float64(samples[i*channels+c])
		})
	}
	return sourceFromFrames(beep.SampleRate(format.SampleRate), frames)
}

func decodeAIFF(data []byte) (*Source, error) {
	dec := aiff.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid aiff file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, ErrEmptySource
	}
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = int(dec.BitDepth)
	}
	if depth <= 0 {
		depth = 16
	}
	full := float64(int64(1) << (depth - 1))
	channels := buf.Format.NumChannels
	frames := make([][2]float64, len(buf.Data)/channels)
	for i := range frames {
		frames[i] = frameFromChannels(channels, func(c int) float64 {
			return float64(buf.Data[i*channels+c]) / full
		})
	}
	return sourceFromFrames(beep.SampleRate(buf.Format.SampleRate), frames)
}

func decodeFLAC(data []byte) (*Source, error) {
	stream, format, err := beepflac.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var frames [][2]float64
	chunk := make([][2]float64, 4096)
	for {
		n, ok := stream.Stream(chunk)
		frames = append(frames, chunk[:n]...)
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return sourceFromFrames(format.SampleRate, frames)
}

// sourceFromS16Stereo converts interleaved little-endian int16 stereo PCM.
func sourceFromS16Stereo(rate beep.SampleRate, pcm []byte) (*Source, error) {
	const frameBytes = 4
	frames := make([][2]float64, len(pcm)/frameBytes)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(pcm[i*frameBytes:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*frameBytes+2:]))
		frames[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}
	return sourceFromFrames(rate, frames)
}

func sourceFromFrames(rate beep.SampleRate, frames [][2]float64) (*Source, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	if len(frames) == 0 {
		return nil, ErrEmptySource
	}
	return NewSourceFromFrames(rate, frames), nil
}

// frameFromChannels folds any channel layout to stereo: mono is duplicated,
// extra channels beyond the first two are dropped.
func frameFromChannels(channels int, sample func(c int) float64) [2]float64 {
	if channels == 1 {
		v := sample(0)
		return [2]float64{v, v}
	}
	return [2]float64{sample(0), sample(1)}
}
