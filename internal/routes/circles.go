package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/likelemba/likelemba/internal/circle"
)

// RegisterCircleRoutes wires circle and membership endpoints. The /mine
// listing needs the caller's identity, everything else is keyed by ids in
// the path.
func RegisterCircleRoutes(r fiber.Router, h *circle.Handler, jwtmw fiber.Handler) {
	r.Post("/circles", h.Create)
	r.Get("/circles", h.List)
	r.Get("/circles/mine", jwtmw, h.Mine)
	r.Get("/circles/:id", h.Get)
	r.Patch("/circles/:id", h.Update)
	r.Delete("/circles/:id", h.Delete)

	r.Post("/circles/:id/members", h.AddMember)
	r.Patch("/circles/:id/members/:memberId", h.UpdateMember)
	r.Delete("/circles/:id/members/:memberId", h.RemoveMember)
}
