package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/ai"
	"github.com/medrec/medrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.PUT("/patients/:id/avatar", h.SetAvatar)

	api.POST("/patients/:id/labs", h.AddLabResult)
	api.PATCH("/patients/:id/labs/:labId", h.UpdateLabResult)
	api.DELETE("/patients/:id/labs/:labId", h.DeleteLabResult)
	api.POST("/patients/:id/labs/import", h.ImportLabResults)

	api.POST("/patients/:id/visits", h.AddVisitNote)
	api.GET("/patients/:id/medications", h.ListMedications)
	api.POST("/patients/:id/medications", h.AddMedication)
	api.POST("/patients/:id/radiology", h.AddRadiologyLink)
	api.GET("/patients/:id/summary", h.Summarize)
}

// httpError maps the store taxonomy onto status codes: ValidationError 422,
// NotFoundError 404, DuplicateIDError 409.
func httpError(err error) error {
	var ve *ValidationError
	var nfe *NotFoundError
	var de *DuplicateIDError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &nfe):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &de):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in CreatePatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.FindPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return httpError(err)
	}

	total := len(patients)
	if pg.Offset >= total {
		patients = nil
	} else {
		end := pg.Offset + pg.Limit
		if end > total {
			end = total
		}
		patients = patients[pg.Offset:end]
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var in UpdatePatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SetAvatar(c echo.Context) error {
	var in struct {
		ImageData string `json:"image_data"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetAvatar(c.Request().Context(), c.Param("id"), in.ImageData); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddLabResult(c echo.Context) error {
	var in LabResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.AddLabResult(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateLabResult(c echo.Context) error {
	var in UpdateLabResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateLabResult(c.Request().Context(), c.Param("id"), c.Param("labId"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteLabResult(c echo.Context) error {
	if err := h.svc.DeleteLabResult(c.Request().Context(), c.Param("id"), c.Param("labId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ImportLabResults(c echo.Context) error {
	var in ai.ExtractionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	results, err := h.svc.ImportLabResults(c.Request().Context(), c.Param("id"), in)
	if errors.Is(err, ErrStaleResponse) {
		// Navigated away mid-call; nothing was applied.
		return c.JSON(http.StatusOK, []LabResult{})
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) AddVisitNote(c echo.Context) error {
	var in VisitNoteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.AddVisitNote(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListMedications(c echo.Context) error {
	active, _ := strconv.ParseBool(c.QueryParam("active"))
	meds, err := h.svc.ListMedications(c.Request().Context(), c.Param("id"), active)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, meds)
}

func (h *Handler) AddMedication(c echo.Context) error {
	var in MedicationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.AddMedication(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) AddRadiologyLink(c echo.Context) error {
	var in RadiologyLinkInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.AddRadiologyLink(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) Summarize(c echo.Context) error {
	text, err := h.svc.SummarizePatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}
