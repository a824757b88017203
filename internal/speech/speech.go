package speech

import (
	"context"
	"errors"
)

// ErrTTS indicates the speech provider was unreachable or rejected the text.
var ErrTTS = errors.New("text to speech failed")

// Utterance is one synthesized reply. Audio holds encoded audio when a remote
// provider produced it; it is empty for locally synthesized speech. Done is
// closed when playback finishes or is cancelled, never left open.
type Utterance struct {
	Audio []byte
	Voice string
	Done  <-chan struct{}
}

// Speaker renders text as speech in the given language ("en" or "hi").
type Speaker interface {
	Speak(ctx context.Context, text, language string) (Utterance, error)
}
