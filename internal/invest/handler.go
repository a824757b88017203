package invest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/user"
)

// Handler exposes the investment endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an investment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type investRequest struct {
	UserID     uint    `json:"user_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Instrument string  `json:"type" validate:"required"`
}

// Invest buys units of an instrument from the user's balance.
func (h *Handler) Invest(c *fiber.Ctx) error {
	var req investRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Invest(c.UserContext(), InvestInput{
		UserID:     req.UserID,
		Instrument: req.Instrument,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return c.JSON(fiber.Map{"success": false, "message": "Insufficient balance to invest."})
		case errors.Is(err, ErrUnknownInstrument):
			return fiber.NewError(http.StatusBadRequest, fmt.Sprintf("unknown instrument type %q", req.Instrument))
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Invested ₹%.0f in %s!", res.Amount, res.Instrument),
		"data": fiber.Map{
			"type":        res.Instrument,
			"amount":      res.Amount,
			"units":       res.Units,
			"price":       res.Price,
			"new_balance": res.NewBalance,
		},
	})
}

// Portfolio returns the valued holdings of a user.
func (h *Handler) Portfolio(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}

	portfolio, err := h.service.Portfolio(c.UserContext(), uint(userID))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "data": portfolio})
}

// TopPick returns the best performing instrument from the weekly return table.
func (h *Handler) TopPick(c *fiber.Ctx) error {
	ticker, name, weekly := TopPerformer()
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"ticker":        ticker,
			"name":          name,
			"weekly_return": weekly,
		},
	})
}
