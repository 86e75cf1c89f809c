package reminder

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medminder/medminder/internal/platform/auth"
)

// Handler exposes the reminder session API.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes mounts the reminder endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/patients/:patientId/session", h.StartSession, auth.RequireRole("patient", "doctor"))
	g.DELETE("/patients/:patientId/session", h.StopSession, auth.RequireRole("patient", "doctor"))
	g.GET("/patients/:patientId/reminders", h.GetReminders, auth.RequireRole("patient", "doctor"))
	g.POST("/medicine-intake", h.RespondIntake, auth.RequireRole("patient"))
}

// StartSession begins (or re-attaches to) the patient's reminder session.
func (h *Handler) StartSession(c echo.Context) error {
	patientID := c.Param("patientId")
	sess, err := h.manager.Start(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

// StopSession ends the patient's reminder session.
func (h *Handler) StopSession(c echo.Context) error {
	h.manager.Stop(c.Param("patientId"))
	return c.NoContent(http.StatusNoContent)
}

// GetReminders reports the countdowns and alarm states for a running session.
func (h *Handler) GetReminders(c echo.Context) error {
	sess, ok := h.manager.Get(c.Param("patientId"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no active session for patient")
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

type intakeResponseRequest struct {
	PatientID    string `json:"patientId"`
	MedicineName string `json:"medicineName"`
	Taken        bool   `json:"taken"`
}

// RespondIntake answers a showing prompt with whether the dose was taken.
func (h *Handler) RespondIntake(c echo.Context) error {
	var req intakeResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID == "" || req.MedicineName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patientId and medicineName are required")
	}

	sess, ok := h.manager.Get(req.PatientID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no active session for patient")
	}
	if err := sess.Respond(c.Request().Context(), req.MedicineName, req.Taken); err != nil {
		if errors.Is(err, ErrNotPrompting) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "intake recorded"})
}
