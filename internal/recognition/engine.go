// Package recognition is the speech-to-text engine boundary. The concrete
// engine shells out to a faster-whisper CLI; the Cache hands out a single
// leased engine per tier so a tier switch can never race an in-flight
// transcription.
package recognition

import (
	"context"

	"xscribe/internal/modelconfig"
	"xscribe/internal/result"
)

// Options carries the per-run decode parameters and language hint.
type Options struct {
	Config         modelconfig.Config
	Language       string
	CUDAEnabled    bool
	WordTimestamps bool
}

// Output is the raw engine result before pipeline assembly.
type Output struct {
	Segments            []result.Segment
	Words               []result.WordTimestamp
	Language            string
	LanguageProbability float64
}

// Engine transcribes one audio file per call. Implementations hold the
// loaded model for the tier they were built with.
type Engine interface {
	// Transcribe runs recognition over a mono WAV file.
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Output, error)
	// Tier reports the model tier this engine was built with.
	Tier() modelconfig.Tier
	// Close releases the model and any accelerator memory.
	Close() error
}
