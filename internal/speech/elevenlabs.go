package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// ElevenLabs renders speech through the ElevenLabs API. Voice IDs are chosen
// per language so Hindi replies use a Hindi-capable voice.
type ElevenLabs struct {
	apiKey   string
	voiceIDs map[string]string
	baseURL  string
	http     *http.Client
}

// NewElevenLabs constructs an ElevenLabs client. voiceIDs maps language tags
// to voice identifiers; "en" is the fallback for unmapped languages.
func NewElevenLabs(apiKey string, voiceIDs map[string]string) *ElevenLabs {
	return &ElevenLabs{
		apiKey:   apiKey,
		voiceIDs: voiceIDs,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Speak synthesizes the text and returns the encoded audio. The utterance is
// done as soon as the audio is delivered; playback belongs to the caller.
func (e *ElevenLabs) Speak(ctx context.Context, text, language string) (Utterance, error) {
	voiceID, ok := e.voiceIDs[language]
	if !ok {
		voiceID = e.voiceIDs["en"]
	}
	if voiceID == "" {
		return Utterance{}, fmt.Errorf("%w: no voice configured for language %q", ErrTTS, language)
	}

	payload, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return Utterance{}, fmt.Errorf("%w: %v", ErrTTS, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Utterance{}, fmt.Errorf("%w: %v", ErrTTS, err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.http.Do(req)
	if err != nil {
		return Utterance{}, fmt.Errorf("%w: %v", ErrTTS, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Utterance{}, fmt.Errorf("%w: status %d: %s", ErrTTS, resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return Utterance{}, fmt.Errorf("%w: read audio: %v", ErrTTS, err)
	}

	done := make(chan struct{})
	close(done)
	return Utterance{Audio: audio, Voice: voiceID, Done: done}, nil
}
