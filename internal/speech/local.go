package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Voice is one entry in the platform's synthesis voice inventory.
type Voice struct {
	Name    string
	Locale  string
	Default bool
}

// platformVoices mirrors a typical installed voice inventory.
var platformVoices = []Voice{
	{Name: "Samantha", Locale: "en-US", Default: true},
	{Name: "Google US English", Locale: "en-US"},
	{Name: "Google UK English Female", Locale: "en-GB"},
	{Name: "Rishi", Locale: "en-IN"},
	{Name: "Google हिन्दी", Locale: "hi-IN"},
	{Name: "Lekha", Locale: "hi-IN"},
}

// Synthesizer is the always-available local speech output, modelling the
// platform's built-in synthesis. It never fails; it selects a
// language-appropriate voice and resolves the utterance after a playback
// delay proportional to the text length.
type Synthesizer struct {
	voices []Voice

	// charDuration is the modelled playback time per character. Tests set
	// it to zero for instant resolution.
	charDuration time.Duration

	mu sync.Mutex
	// selected caches the chosen voice per language for the session.
	selected map[string]Voice
}

// NewSynthesizer constructs the local fallback speaker.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		voices:       platformVoices,
		charDuration: 50 * time.Millisecond,
		selected:     make(map[string]Voice),
	}
}

// Speak selects a voice for the language and models playback. Done is closed
// when the modelled playback finishes or the context is cancelled.
func (s *Synthesizer) Speak(ctx context.Context, text, language string) (Utterance, error) {
	voice := s.voiceFor(language, text)

	done := make(chan struct{})
	duration := time.Duration(len(text)) * s.charDuration
	go func() {
		defer close(done)
		if duration <= 0 {
			return
		}
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}()

	return Utterance{Voice: voice.Name, Done: done}, nil
}

// voiceFor picks a voice by locale and script. Named provider voices beat the
// platform default for the same language; Devanagari text forces a Hindi
// voice even when tagged as English.
func (s *Synthesizer) voiceFor(language, text string) Voice {
	if language != "hi" && containsDevanagari(text) {
		language = "hi"
	}
	if language == "" {
		language = "en"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.selected[language]; ok {
		return v
	}

	var fallback *Voice
	var chosen *Voice
	for i := range s.voices {
		v := &s.voices[i]
		if !strings.HasPrefix(v.Locale, language) {
			continue
		}
		if fallback == nil {
			fallback = v
		}
		if !v.Default && (chosen == nil || preferredProvider(v.Name)) {
			if chosen == nil || (preferredProvider(v.Name) && !preferredProvider(chosen.Name)) {
				chosen = v
			}
		}
	}
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		// Nothing matches the language; fall back to the platform default.
		for i := range s.voices {
			if s.voices[i].Default {
				chosen = &s.voices[i]
				break
			}
		}
		if chosen == nil {
			chosen = &s.voices[0]
		}
	}

	s.selected[language] = *chosen
	return *chosen
}

func preferredProvider(name string) bool {
	return strings.HasPrefix(name, "Google")
}

func containsDevanagari(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Devanagari) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for logging.
func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Locale)
}
