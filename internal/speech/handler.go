package speech

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the text-to-speech endpoint.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a TTS handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type ttsHTTPRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language"`
}

// Speak synthesizes the text. Remote synthesis returns the raw audio bytes;
// when the local fallback handled it, a JSON body tells the client to use its
// own synthesis with the selected voice.
func (h *Handler) Speak(c *fiber.Ctx) error {
	var req ttsHTTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	utterance, err := h.service.Speak(c.UserContext(), req.Text, req.Language)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}

	if len(utterance.Audio) > 0 {
		c.Set("Content-Type", "audio/mpeg")
		return c.Send(utterance.Audio)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"fallback": true,
		"voice":    utterance.Voice,
	})
}
