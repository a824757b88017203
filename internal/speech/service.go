package speech

import (
	"context"
	"log/slog"
	"sync"
)

// Service is the speech output used by the voice session. It tries the remote
// provider first and falls back to the local synthesizer on any failure, so a
// Speak call always resolves. Starting a new utterance cancels the one still
// playing; audio never overlaps.
type Service struct {
	remote   Speaker
	fallback Speaker
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewService constructs the speech service. remote may be nil when no TTS
// credential is configured.
func NewService(remote Speaker, fallback Speaker, logger *slog.Logger) *Service {
	return &Service{remote: remote, fallback: fallback, logger: logger}
}

// Speak renders the text, cancelling any in-progress utterance first.
func (s *Service) Speak(ctx context.Context, text, language string) (Utterance, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	playCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	if s.remote != nil {
		utterance, err := s.remote.Speak(playCtx, text, language)
		if err == nil {
			return utterance, nil
		}
		s.logger.Warn("remote speech failed, using local synthesis", "error", err)
	}

	return s.fallback.Speak(playCtx, text, language)
}

// Stop cancels the in-progress utterance, if any.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
