package transcribe

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the audio transcription endpoint.
type Handler struct {
	transcriber Transcriber
}

// NewHandler constructs a transcription handler.
func NewHandler(transcriber Transcriber) *Handler {
	return &Handler{transcriber: transcriber}
}

// Transcribe accepts a multipart audio upload under the "audio" field and
// returns the recognized text with the detected language.
func (h *Handler) Transcribe(c *fiber.Ctx) error {
	if h.transcriber == nil {
		return fiber.NewError(http.StatusServiceUnavailable, "transcription is not configured")
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "missing audio file")
	}
	audio, err := file.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	defer audio.Close()

	res, err := h.transcriber.Transcribe(c.UserContext(), audio, file.Filename)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"text":     res.Text,
		"language": res.Language,
	})
}
