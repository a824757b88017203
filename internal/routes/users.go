package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/user"
)

// RegisterUserRoutes wires the user, balance and transaction endpoints. The
// user detail endpoint aggregates across domains, so it lives here rather
// than in any single domain handler.
func RegisterUserRoutes(api fiber.Router, users *user.Service, book ledger.Ledger, investments *invest.Service) {
	api.Get("/users", func(c *fiber.Ctx) error {
		all, err := users.All(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(all))
		for _, u := range all {
			out = append(out, fiber.Map{
				"id":      u.ID,
				"name":    u.Name,
				"balance": u.Balance,
			})
		}
		return c.JSON(fiber.Map{"success": true, "data": out})
	})

	api.Get("/balance/:userID", func(c *fiber.Ctx) error {
		userID, err := paramUserID(c)
		if err != nil {
			return err
		}
		balance, err := book.Balance(c.UserContext(), userID)
		if err != nil {
			return mapUserErr(err)
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"balance": balance}})
	})

	api.Get("/transactions/:userID", func(c *fiber.Ctx) error {
		userID, err := paramUserID(c)
		if err != nil {
			return err
		}
		limit := c.QueryInt("limit", 10)
		txns, err := book.Transactions(c.UserContext(), userID, limit)
		if err != nil {
			return mapUserErr(err)
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"transactions": txns}})
	})

	api.Get("/user/:userID", func(c *fiber.Ctx) error {
		userID, err := paramUserID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		u, err := users.Get(ctx, userID)
		if err != nil {
			return mapUserErr(err)
		}
		txns, err := book.Transactions(ctx, userID, 10)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		portfolio, err := investments.Portfolio(ctx, userID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		data := fiber.Map{
			"id":           u.ID,
			"name":         u.Name,
			"balance":      u.Balance,
			"transactions": txns,
			"investments":  portfolio,
		}
		if u.PhoneNumber != nil {
			data["phone_number"] = *u.PhoneNumber
		}
		return c.JSON(fiber.Map{"success": true, "data": data})
	})

	api.Post("/user/:userID/phone", func(c *fiber.Ctx) error {
		userID, err := paramUserID(c)
		if err != nil {
			return err
		}
		var req struct {
			PhoneNumber string `json:"phone_number"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		res, err := users.SavePhone(c.UserContext(), userID, req.PhoneNumber)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if res.Linked {
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Existing account linked.",
				"data":    fiber.Map{"phone_number": res.Phone, "new_balance": res.NewBalance, "linked": true},
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Phone number saved.",
			"data":    fiber.Map{"phone_number": res.Phone, "linked": false},
		})
	})
}

func paramUserID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("userID")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}

func mapUserErr(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
