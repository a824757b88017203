package payments

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/user"
)

// Handler exposes the payment endpoint.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type paymentRequest struct {
	Recipient string  `json:"recipient" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	PIN       string  `json:"pin" validate:"required,len=4,numeric"`
	UserID    uint    `json:"user_id" validate:"required"`
}

// Pay executes a PIN-confirmed payment. Ledger failures come back as
// success=false bodies so the voice UI can speak them; only malformed
// requests get non-2xx statuses.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Pay(c.UserContext(), PayInput{
		UserID:    req.UserID,
		Recipient: req.Recipient,
		Amount:    req.Amount,
		PIN:       req.PIN,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidPIN):
			return c.JSON(fiber.Map{"success": false, "message": "Incorrect PIN. Payment failed."})
		case errors.Is(err, ErrRecipientNotFound):
			return c.JSON(fiber.Map{"success": false, "message": fmt.Sprintf("Recipient %s not found.", req.Recipient)})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return c.JSON(fiber.Map{"success": false, "message": "Insufficient balance. Payment failed."})
		case errors.Is(err, user.ErrSelfPayment):
			return c.JSON(fiber.Map{"success": false, "message": "You cannot pay yourself."})
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Payment of ₹%.0f to %s successful!", req.Amount, res.Recipient),
		"data": fiber.Map{
			"new_balance": res.NewBalance,
			"nudge":       res.Nudge,
		},
	})
}
