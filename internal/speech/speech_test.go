package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicepay/voicepay/internal/logging"
)

func instantSynthesizer() *Synthesizer {
	s := NewSynthesizer()
	s.charDuration = 0
	return s
}

func TestElevenLabsSpeak(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client := NewElevenLabs("secret", map[string]string{"en": "voice-en", "hi": "voice-hi"})
	client.baseURL = srv.URL

	utterance, err := client.Speak(context.Background(), "Your balance is 100 rupees.", "hi")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), utterance.Audio)
	assert.Equal(t, "voice-hi", utterance.Voice)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "/v1/text-to-speech/voice-hi", gotPath)

	select {
	case <-utterance.Done:
	default:
		t.Fatal("remote utterance should be done on delivery")
	}
}

func TestElevenLabsUnmappedLanguageFallsBackToEnglishVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	client := NewElevenLabs("secret", map[string]string{"en": "voice-en"})
	client.baseURL = srv.URL

	utterance, err := client.Speak(context.Background(), "hello", "fr")
	require.NoError(t, err)
	assert.Equal(t, "voice-en", utterance.Voice)
}

func TestServiceFallsBackWhenRemoteFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	remote := NewElevenLabs("secret", map[string]string{"en": "voice-en"})
	remote.baseURL = srv.URL

	svc := NewService(remote, instantSynthesizer(), logging.Discard())
	utterance, err := svc.Speak(context.Background(), "hello there", "en")
	require.NoError(t, err)
	assert.Empty(t, utterance.Audio)
	assert.Equal(t, "Google US English", utterance.Voice)

	select {
	case <-utterance.Done:
	case <-time.After(time.Second):
		t.Fatal("fallback utterance never resolved")
	}
}

func TestServiceWithoutRemoteUsesFallback(t *testing.T) {
	svc := NewService(nil, instantSynthesizer(), logging.Discard())
	utterance, err := svc.Speak(context.Background(), "hello", "en")
	require.NoError(t, err)
	assert.Equal(t, "Google US English", utterance.Voice)
}

func TestNewUtteranceCancelsPrevious(t *testing.T) {
	synth := NewSynthesizer()
	synth.charDuration = time.Hour // never finishes on its own

	svc := NewService(nil, synth, logging.Discard())
	first, err := svc.Speak(context.Background(), "a long sentence", "en")
	require.NoError(t, err)

	_, err = svc.Speak(context.Background(), "interrupting sentence", "en")
	require.NoError(t, err)

	select {
	case <-first.Done:
	case <-time.After(time.Second):
		t.Fatal("previous utterance was not cancelled")
	}
}

func TestVoiceSelectionHeuristics(t *testing.T) {
	synth := instantSynthesizer()

	hindi, err := synth.Speak(context.Background(), "आपका बैलेंस", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Google हिन्दी", hindi.Voice)

	// Devanagari text forces a Hindi voice even when tagged as English.
	forced, err := synth.Speak(context.Background(), "नीरज को भेजो", "en")
	require.NoError(t, err)
	assert.Equal(t, "Google हिन्दी", forced.Voice)

	english, err := synth.Speak(context.Background(), "Your balance", "en")
	require.NoError(t, err)
	assert.Equal(t, "Google US English", english.Voice)

	unknown, err := synth.Speak(context.Background(), "Bonjour", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Samantha", unknown.Voice)
}
