package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://api.groq.com/openai/v1/audio/transcriptions"

	// Bilingual prompt primes Whisper for the demo's vocabulary and names.
	whisperPrompt = "Hindi examples: Niraj ko sau rupaye bhejo. Mera balance kitna hai. Anuj ko paanch sau rupaye bhejo. English examples: Send 100 rupees to Anuj. What is my balance. Pay 500 to Rahul. Common names: Niraj, Anuj, Rahul, Priya, Amit."
)

// GroqClient transcribes audio with the Groq Whisper API.
type GroqClient struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewGroqClient constructs a Whisper client.
func NewGroqClient(apiKey, model string) *GroqClient {
	return &GroqClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type groqResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the audio and returns the recognized text with the
// detected language. Language is left to the provider's auto-detection.
func (c *GroqClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (Result, error) {
	if filename == "" {
		filename = "recording.webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return Result{}, fmt.Errorf("%w: read audio: %v", ErrTranscription, err)
	}
	for field, value := range map[string]string{
		"model":           c.model,
		"response_format": "verbose_json",
		"prompt":          whisperPrompt,
	} {
		if err := writer.WriteField(field, value); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
		}
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrTranscription, resp.StatusCode, string(detail))
	}

	var decoded groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}

	return Result{
		Text:     strings.TrimSpace(decoded.Text),
		Language: normalizeLanguage(decoded.Language),
	}, nil
}

// normalizeLanguage maps Whisper's language names to the two-letter tags the
// rest of the pipeline speaks.
func normalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "hindi", "hi":
		return "hi"
	case "english", "en":
		return "en"
	case "":
		return ""
	default:
		return ""
	}
}
