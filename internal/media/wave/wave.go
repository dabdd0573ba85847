package wave

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Target format for transcription input.
const (
	TargetSampleRate = 16000
	TargetBitDepth   = 16
	TargetChannels   = 1
)

// Info describes the format of a PCM wave file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
}

// IsNormalized reports whether the format matches the mono 16 kHz 16-bit
// contract expected by the transcription model.
func (i Info) IsNormalized() bool {
	return i.SampleRate == TargetSampleRate && i.Channels == TargetChannels && i.BitDepth == TargetBitDepth
}

// Probe reads the header of a wave file and returns its format.
func Probe(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wave: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("probe wave %s: not a valid RIFF/WAVE file", path)
	}
	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	if dur, err := decoder.Duration(); err == nil {
		info.Duration = dur.Seconds()
	}
	return info, nil
}

// Normalize decodes a RIFF/WAVE source, downmixes to mono, resamples to
// 16 kHz, and writes the result as 16-bit PCM at dstPath. This is the
// in-process fallback used when ffmpeg is unavailable; it only understands
// PCM wave containers, not arbitrary video formats.
func Normalize(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	decoder := wav.NewDecoder(src)
	if !decoder.IsValidFile() {
		return fmt.Errorf("decode %s: not a valid RIFF/WAVE file", srcPath)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode %s: %w", srcPath, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return fmt.Errorf("decode %s: empty audio payload", srcPath)
	}

	mono := downmix(buf.Data, buf.Format.NumChannels)
	samples := resample(mono, buf.Format.SampleRate, TargetSampleRate)
	samples = rescale(samples, int(decoder.BitDepth), TargetBitDepth)

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	encoder := wav.NewEncoder(out, TargetSampleRate, TargetBitDepth, TargetChannels, 1)
	writeErr := encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: TargetChannels, SampleRate: TargetSampleRate},
		Data:           samples,
		SourceBitDepth: TargetBitDepth,
	})
	if writeErr != nil {
		_ = encoder.Close()
		_ = out.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("encode destination: %w", writeErr)
	}
	if err := encoder.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("finalize destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

// downmix averages interleaved channels into a single mono channel.
func downmix(data []int, channels int) []int {
	if channels <= 1 {
		return data
	}
	frames := len(data) / channels
	mono := make([]int, frames)
	for frame := 0; frame < frames; frame++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += data[frame*channels+ch]
		}
		mono[frame] = sum / channels
	}
	return mono
}

// resample converts between sample rates with linear interpolation. Speech
// content tolerates the interpolation artifacts; the model resamples
// internally anyway when rates drift.
func resample(data []int, srcRate, dstRate int) []int {
	if srcRate == dstRate || srcRate <= 0 || len(data) == 0 {
		return data
	}
	outLen := int(int64(len(data)) * int64(dstRate) / int64(srcRate))
	if outLen == 0 {
		return nil
	}
	out := make([]int, outLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = int(float64(data[idx])*(1-frac) + float64(data[idx+1])*frac)
	}
	return out
}

// rescale shifts sample magnitudes between bit depths.
func rescale(data []int, srcDepth, dstDepth int) []int {
	if srcDepth == 0 || srcDepth == dstDepth {
		return data
	}
	shift := srcDepth - dstDepth
	out := make([]int, len(data))
	if shift > 0 {
		for i, s := range data {
			out[i] = s >> uint(shift)
		}
	} else {
		for i, s := range data {
			out[i] = s << uint(-shift)
		}
	}
	return out
}

// Verify confirms dstPath exists and satisfies the normalized format contract.
func Verify(path string) error {
	info, err := Probe(path)
	if err != nil {
		return err
	}
	if !info.IsNormalized() {
		return errors.New(formatMismatch(info))
	}
	return nil
}

func formatMismatch(info Info) string {
	return fmt.Sprintf("waveform format mismatch: got %d Hz, %d ch, %d bit; want %d Hz, %d ch, %d bit",
		info.SampleRate, info.Channels, info.BitDepth, TargetSampleRate, TargetChannels, TargetBitDepth)
}
