package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/service"
)

// RegistrationHandler exposes the registration ledger.
type RegistrationHandler struct {
	Ledger *service.RegistrationService
}

func NewRegistrationHandler(s *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{Ledger: s}
}

type registerEventReq struct {
	EventID uint64 `json:"event_id" validate:"required,gt=0"`
}

// Register handles POST /v1/registrations.
func (h *RegistrationHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req registerEventReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	reg, err := h.Ledger.Register(c.Request().Context(), req.EventID, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newRegistrationResp(reg))
}

// Cancel handles DELETE /v1/registrations/:id.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid registration id")
	}
	reg, err := h.Ledger.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "registration cancelled",
		"registration_id": reg.ID,
	})
}

// Get handles GET /v1/registrations/:id.
func (h *RegistrationHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid registration id")
	}
	reg, err := h.Ledger.Get(c.Request().Context(), id, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newRegistrationResp(reg))
}

// ListMine handles GET /v1/my-registrations?include_cancelled=.
func (h *RegistrationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	list, err := h.Ledger.ListForUser(c.Request().Context(), uid, parseBoolQuery(c, "include_cancelled"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]registrationResp, 0, len(list))
	for _, d := range list {
		out = append(out, newRegistrationDetailResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": out, "count": len(out)})
}

// Participants handles GET /v1/admin/events/:id/participants.
func (h *RegistrationHandler) Participants(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid event id")
	}
	ps, err := h.Ledger.ListParticipants(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]participantResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, participantResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "participants": out, "count": len(out)})
}
