// Package extraction turns arbitrary video containers into normalized mono
// 16 kHz 16-bit PCM waveform files.
//
// The primary strategy shells out to ffmpeg with a fixed argument set; when
// ffmpeg is missing or exits non-zero, an in-process decode path handles PCM
// wave containers. Only when both strategies fail does Extract return an
// error, an *ExtractError that names both causes and carries install guidance
// for the missing tool.
package extraction
