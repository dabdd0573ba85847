// Package processor composes waveform extraction and transcription into the
// end-to-end video-to-transcript pipeline and owns the model lifecycle.
package processor
