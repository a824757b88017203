package intent

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/voicepay/voicepay/internal/user"
)

// Handler exposes the voice command endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a voice command handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type voiceCommandRequest struct {
	Text     string `json:"text" validate:"required"`
	UserID   uint   `json:"user_id" validate:"required"`
	Language string `json:"language"`
}

// ProcessVoice classifies a transcribed command and runs the matching action.
// Classification failures come back as a spoken retry prompt rather than an
// error page, so the voice loop keeps going.
func (h *Handler) ProcessVoice(c *fiber.Ctx) error {
	var req voiceCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Process(c.UserContext(), req.UserID, req.Text, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassification):
			return c.JSON(fiber.Map{
				"success": false,
				"message": unknownMessage(req.Language),
				"intent":  IntentUnknown,
			})
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": res.Message,
		"data":    res.Data,
		"intent":  res.Intent,
	})
}

// ClearConversation resets the conversation state, including the locked
// language, for a user.
func (h *Handler) ClearConversation(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.service.ClearConversation(c.UserContext(), uint(userID)); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "Conversation cleared."})
}
