// Package wave reads and writes PCM wave files and implements the in-process
// normalization fallback (downmix + resample) used when ffmpeg is missing.
package wave
