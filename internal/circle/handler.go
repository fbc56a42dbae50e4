package circle

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes circle HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a circle HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create provisions a circle with its optional initial members.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateCircleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(c.UserContext(), CreateInput{
		Name:      req.Name,
		OwnerID:   req.OwnerID,
		Amount:    req.Amount,
		Duration:  req.Duration,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Members:   toMemberInputs(req.Members),
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusCreated).JSON(toCircleResponse(created))
}

// List returns every circle.
func (h *Handler) List(c *fiber.Ctx) error {
	circles, err := h.service.List(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toCircleResponses(circles))
}

// Mine returns the authenticated user's circles, optionally filtered by status.
func (h *Handler) Mine(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	circles, err := h.service.ListByUser(c.UserContext(), userID, c.Query("status"))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toCircleResponses(circles))
}

// Get returns one circle by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	found, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toCircleResponse(found))
}

// Update applies scalar changes and reconciles the member list if one is supplied.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req UpdateCircleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := UpdateInput{
		Name:      req.Name,
		Amount:    req.Amount,
		Duration:  req.Duration,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Members != nil {
		members := toMemberInputs(*req.Members)
		input.Members = &members
	}

	updated, err := h.service.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusOK).JSON(toCircleResponse(updated))
}

// Delete removes a circle and, through the storage cascade, its memberships.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

// AddMember adds one member to a circle.
func (h *Handler) AddMember(c *fiber.Ctx) error {
	var req MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	added, err := h.service.AddMember(c.UserContext(), c.Params("id"), toMemberInput(req))
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusCreated).JSON(toMemberResponse(added))
}

// UpdateMember updates one membership addressed by its id.
func (h *Handler) UpdateMember(c *fiber.Ctx) error {
	var req UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateMember(c.UserContext(), c.Params("id"), c.Params("memberId"), MemberUpdateInput{
		SlotNumber:    req.SlotNumber,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PayoutDate:    req.PayoutDate,
		AdminFees:     req.AdminFees,
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusOK).JSON(toMemberResponse(updated))
}

// RemoveMember removes one membership from a circle.
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	if err := h.service.RemoveMember(c.UserContext(), c.Params("id"), c.Params("memberId")); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// httpError maps domain errors to HTTP statuses. Anything unclassified is
// a server-side failure and must not leak storage detail to the caller.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrCircleNotFound),
		errors.Is(err, ErrMemberNotFound),
		errors.Is(err, ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrAlreadyMember):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMemberRefRequired),
		errors.Is(err, ErrDuplicateMember),
		errors.Is(err, ErrStatusTransition):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "operation failed")
	}
}
