package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotAuth = r.Header.Get("Authorization")
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		file.Close()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "Send 100 rupees to Niraj ", "language": "english"}`))
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", "whisper-large-v3-turbo")
	client.endpoint = srv.URL

	res, err := client.Transcribe(context.Background(), strings.NewReader("fake-audio"), "clip.webm")
	require.NoError(t, err)
	assert.Equal(t, "Send 100 rupees to Niraj", res.Text)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "whisper-large-v3-turbo", gotModel)
	assert.Equal(t, "verbose_json", gotFormat)
}

func TestGroqTranscribeHindi(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "निराज को सौ रुपये भेजो", "language": "hindi"}`))
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", "whisper-large-v3-turbo")
	client.endpoint = srv.URL

	res, err := client.Transcribe(context.Background(), strings.NewReader("fake-audio"), "")
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Language)
}

func TestGroqTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", "whisper-large-v3-turbo")
	client.endpoint = srv.URL

	_, err := client.Transcribe(context.Background(), strings.NewReader("fake-audio"), "clip.webm")
	require.ErrorIs(t, err, ErrTranscription)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "hi", normalizeLanguage("Hindi"))
	assert.Equal(t, "en", normalizeLanguage("english"))
	assert.Equal(t, "en", normalizeLanguage("en"))
	assert.Equal(t, "", normalizeLanguage("tamil"))
	assert.Equal(t, "", normalizeLanguage(""))
}
