package intake

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medminder/medminder/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("doctor", "patient"))
	g.GET("/patients/:patientId/intake-history", h.GetHistory)
}

// GetHistory lists the patient's intake records for the last N days
// (default 30).
func (h *Handler) GetHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))

	records, err := h.svc.History(c.Request().Context(), id, days, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []*Record{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": records, "count": len(records)})
}
