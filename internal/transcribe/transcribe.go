package transcribe

import (
	"context"
	"errors"
	"io"
)

// ErrTranscription indicates the speech-to-text provider was unreachable or
// rejected the audio.
var ErrTranscription = errors.New("transcription failed")

// Result is one transcribed utterance. Language is the provider's detection,
// normalized to a two-letter tag ("en", "hi"), or empty when unknown.
type Result struct {
	Text     string
	Language string
}

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (Result, error)
}
