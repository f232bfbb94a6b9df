package medicationrequest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	"github.com/scburnad/patient-medication-app/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the medication request endpoints. Trailing slashes
// are stripped before routing, so "/medication-requests/" also matches.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/medication-requests", h.List)
	g.POST("/medication-requests", h.Create)
	g.GET("/medication-requests/:id", h.Get)
	g.PATCH("/medication-requests/:id", h.Update)
}

// createRequest tells a missing patient_reference (422) apart from an explicit
// 0, which is resolved like any other id and ends in a 404.
type createRequest struct {
	Create
	PatientReference *int64 `json:"patient_reference" validate:"required"`
}

func (h *Handler) Create(c echo.Context) error {
	var body createRequest
	if err := decodeBody(c, &body); err != nil {
		return err
	}
	if err := c.Validate(&body); err != nil {
		return toHTTPError(err)
	}

	in := body.Create
	in.PatientReference = *body.PatientReference
	v, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) List(c echo.Context) error {
	var f Filter
	if s := c.QueryParam("status"); s != "" {
		st := Status(s)
		f.Status = &st
	}

	var err error
	if f.PrescribedFrom, err = queryDate(c, "prescribed_from"); err != nil {
		return toHTTPError(err)
	}
	if f.PrescribedTo, err = queryDate(c, "prescribed_to"); err != nil {
		return toHTTPError(err)
	}

	views, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return toHTTPError(err)
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// patchBody carries the length and enum rules checked by the validator.
type patchBody struct {
	Frequency *string `json:"frequency" validate:"omitempty,max=50"`
	Status    *Status `json:"status" validate:"omitempty,oneof=active completed cancelled on-hold"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var raw map[string]json.RawMessage
	if err := decodeBody(c, &raw); err != nil {
		return err
	}
	p, err := parsePatch(raw)
	if err != nil {
		return toHTTPError(err)
	}
	if err := c.Validate(&patchBody{Frequency: p.Frequency, Status: p.Status}); err != nil {
		return toHTTPError(err)
	}

	v, err := h.svc.Update(c.Request().Context(), id, p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// parsePatch accepts only end_date, frequency and status. end_date may be
// null to clear it; the other two may not.
func parsePatch(raw map[string]json.RawMessage) (Patch, error) {
	var p Patch
	for key, val := range raw {
		loc := []string{"body", key}
		isNull := string(val) == "null"

		switch key {
		case "end_date":
			p.EndDateSet = true
			if isNull {
				continue
			}
			var d civil.Date
			if err := json.Unmarshal(val, &d); err != nil {
				return Patch{}, newValidationError(loc, "invalid date format, expected YYYY-MM-DD", "date_parsing")
			}
			p.EndDate = &d
		case "frequency":
			if isNull {
				return Patch{}, newValidationError(loc, "field may not be null", "none_not_allowed")
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return Patch{}, newValidationError(loc, "value is not a valid string", "string_type")
			}
			p.Frequency = &s
		case "status":
			if isNull {
				return Patch{}, newValidationError(loc, "field may not be null", "none_not_allowed")
			}
			var s Status
			if err := json.Unmarshal(val, &s); err != nil {
				return Patch{}, newValidationError(loc, "value is not a valid string", "string_type")
			}
			p.Status = &s
		default:
			return Patch{}, newValidationError(loc, "extra fields not permitted", "extra_forbidden")
		}
	}
	return p, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, newValidationError([]string{"path", "id"}, "value is not a valid integer", "int_parsing")
	}
	return id, nil
}

func queryDate(c echo.Context, name string) (*civil.Date, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, newValidationError([]string{"query", name}, "invalid date format, expected YYYY-MM-DD", "date_parsing")
	}
	return &d, nil
}

// decodeBody reads a JSON body into dst. Malformed JSON is a 400, JSON of
// the wrong shape is a 422.
func decodeBody(c echo.Context, dst any) error {
	err := json.NewDecoder(c.Request().Body).Decode(dst)
	if err == nil {
		return nil
	}

	var (
		he  *echo.HTTPError
		se  *json.SyntaxError
		ute *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, io.EOF):
		return toHTTPError(newValidationError([]string{"body"}, "field required", "missing"))
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON body").SetInternal(err)
	case errors.As(err, &ute):
		loc := []string{"body"}
		if ute.Field != "" {
			loc = append(loc, ute.Field)
		}
		return toHTTPError(newValidationError(loc, "expected "+ute.Type.String()+", got "+ute.Value, "type_error"))
	}
	// Values rejected by a field's own decoder, such as a malformed date.
	return toHTTPError(newValidationError([]string{"body"}, err.Error(), "value_error"))
}

func toHTTPError(err error) error {
	var (
		refErr  *ReferenceNotFoundError
		nfErr   *RequestNotFoundError
		valErr  *ValidationError
		tagErrs validate.Errors
	)
	switch {
	case errors.As(err, &refErr):
		return echo.NewHTTPError(http.StatusNotFound, refErr.Error())
	case errors.As(err, &nfErr):
		return echo.NewHTTPError(http.StatusNotFound, nfErr.Error())
	case errors.As(err, &valErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, valErr.Fields)
	case errors.As(err, &tagErrs):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, tagErrs)
	}
	return err
}
