// Package transcription converts normalized waveforms into word-aligned
// transcripts.
//
// The speech-recognition model is an external collaborator behind the Model
// interface; FasterWhisper implements it with a long-lived faster-whisper
// worker subprocess that loads the model once and streams segments back as
// they decode. Transcriber drains that single-pass stream, applies the empty
// result quality gate, and assembles the Transcript.
package transcription
