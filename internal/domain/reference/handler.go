package reference

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler exposes read-only lookups of the reference entities.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients/:id", h.GetPatient)
	g.GET("/clinicians/:registration_id", h.GetClinician)
	g.GET("/medications/:code", h.GetMedication)
}

func (h *Handler) GetPatient(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be an integer")
	}
	p, err := h.store.FindPatientByID(c.Request().Context(), id)
	if err != nil {
		return lookupError(err, KindPatient, raw)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetClinician(c echo.Context) error {
	regID := c.Param("registration_id")
	cl, err := h.store.FindClinicianByRegistrationID(c.Request().Context(), regID)
	if err != nil {
		return lookupError(err, KindClinician, regID)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) GetMedication(c echo.Context) error {
	code := c.Param("code")
	m, err := h.store.FindMedicationByCode(c.Request().Context(), code)
	if err != nil {
		return lookupError(err, KindMedication, code)
	}
	return c.JSON(http.StatusOK, m)
}

func lookupError(err error, kind Kind, value string) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, NotFoundMessage(kind, value))
	}
	return err
}
