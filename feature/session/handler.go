package session

import (
	"errors"

	"coop-inventory/core/logger"
	countsync "coop-inventory/feature/count/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for session lifecycle operations.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	sessions := app.Group("/sessions")
	sessions.Post("/", h.HandleCreate)
	sessions.Post("/join", h.HandleJoinByInvite)
	sessions.Get("/:id", h.HandleGet)
	sessions.Get("/:id/invite", h.HandleInvite)
	sessions.Get("/:id/participants", h.HandleParticipants)
	sessions.Post("/:id/join", h.HandleJoin)
	sessions.Post("/:id/status", h.HandleAdvance)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.logger, c)

	var stateErr *StateError
	if errors.As(err, &stateErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": stateErr.Error()})
	}
	var validationErr *countsync.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	}

	l.Error("Session operation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleCreate starts a new counting session hosted by this device.
// @Summary Create Session
// @Description Start a new counting session; the caller becomes host and first participant.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} models.Session
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /sessions [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var body struct {
		SessionName       string `json:"session_name"`
		HostID            string `json:"host_id"`
		HostName          string `json:"host_name"`
		BaselineSessionID string `json:"baseline_session_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid session payload"})
	}

	sess, err := h.service.Create(c.Context(), body.SessionName, body.HostID, body.HostName, body.BaselineSessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess)
}

// HandleGet returns one session by id.
// @Summary Get Session
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 409 {object} map[string]string "Unknown session"
// @Router /sessions/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	sess, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess)
}

// HandleInvite renders the session's join invitation packet.
// @Summary Session Invite
// @Description Encode a join invitation for display as a 2D barcode on the host device.
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string "Unknown or locked session"
// @Router /sessions/{id}/invite [get]
func (h *Handler) HandleInvite(c *fiber.Ctx) error {
	invite, err := h.service.Invite(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"invite": invite})
}

// HandleJoin registers a participant directly by session id.
// @Summary Join Session
// @Tags session
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Participant
// @Failure 409 {object} map[string]string "Unknown session"
// @Router /sessions/{id}/join [post]
func (h *Handler) HandleJoin(c *fiber.Ctx) error {
	var body struct {
		ParticipantID string `json:"participant_id"`
		DisplayName   string `json:"display_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid join payload"})
	}

	p, err := h.service.Join(c.Context(), c.Params("id"), body.ParticipantID, body.DisplayName)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// HandleJoinByInvite accepts a scanned invitation packet.
// @Summary Join By Invite
// @Description Decode a scanned join invitation, mirror the session locally if unseen, and register the participant.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 409 {object} map[string]string "Locked session"
// @Router /sessions/join [post]
func (h *Handler) HandleJoinByInvite(c *fiber.Ctx) error {
	var body struct {
		Invite        string `json:"invite"`
		ParticipantID string `json:"participant_id"`
		DisplayName   string `json:"display_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid join payload"})
	}

	sess, p, err := h.service.JoinByInvite(c.Context(), body.Invite, body.ParticipantID, body.DisplayName)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"session": sess, "participant": p})
}

// HandleAdvance moves the session status forward (host only).
// @Summary Advance Session Status
// @Description Move the session forward through active, finalizing, locked. Host only; never backward.
// @Tags session
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 409 {object} map[string]string "Illegal transition or not the host"
// @Router /sessions/{id}/status [post]
func (h *Handler) HandleAdvance(c *fiber.Ctx) error {
	var body struct {
		ActorID string `json:"actor_id"`
		Status  string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status payload"})
	}

	sess, err := h.service.Advance(c.Context(), c.Params("id"), body.ActorID, body.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess)
}

// HandleParticipants lists the session's participants.
// @Summary List Participants
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} models.Participant
// @Router /sessions/{id}/participants [get]
func (h *Handler) HandleParticipants(c *fiber.Ctx) error {
	out, err := h.service.Participants(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
