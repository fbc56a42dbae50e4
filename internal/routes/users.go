package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/likelemba/likelemba/internal/auth"
	"github.com/likelemba/likelemba/internal/user"
)

// RegisterUserRoutes wires the authenticated profile endpoints.
func RegisterUserRoutes(r fiber.Router, users *user.Service, authHandler *auth.Handler) {
	r.Post("/auth/logout", authHandler.Logout)

	r.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		u, err := users.Get(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":       u.ID,
			"phone":         u.Phone,
			"name":          u.Name,
			"status":        u.Status,
			"token_version": u.TokenVersion,
			"created_at":    u.CreatedAt,
			"last_login":    u.LastLogin,
		})
	})

	r.Patch("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		var req struct {
			Phone    *string `json:"phone"`
			Name     *string `json:"name"`
			Password *string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		u, err := users.Edit(c.UserContext(), uid, user.EditInput{
			Phone:    req.Phone,
			Name:     req.Name,
			Password: req.Password,
		})
		if err != nil {
			switch err {
			case user.ErrNotFound:
				return fiber.NewError(http.StatusNotFound, err.Error())
			case user.ErrPhoneTaken:
				return fiber.NewError(http.StatusConflict, err.Error())
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}
		return c.JSON(fiber.Map{
			"user_id": u.ID,
			"phone":   u.Phone,
			"name":    u.Name,
			"status":  u.Status,
		})
	})
}
