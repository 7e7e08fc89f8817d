package treatment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatb/gatb/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.ListBoard)
	g.GET("/patients/view", h.ViewBoard)
	g.POST("/patients", h.Create)
	g.GET("/patients/:id", h.Get)
	g.PUT("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Delete)

	g.POST("/patients/:id/discharge", h.Discharge)
	g.POST("/patients/:id/restore", h.Restore)
	g.POST("/patients/:id/relocate", h.Relocate)
	g.POST("/patients/:id/extend", h.Extend)

	g.POST("/patients/:id/messages", h.AddMessage)
	g.GET("/patients/:id/messages", h.ListMessages)
	g.GET("/messages/meta", h.MessageMeta)

	g.GET("/reports/treatments.csv", h.ExportCSV)
}

// httpError maps domain errors onto HTTP status codes. Validation and
// argument problems are the caller's to fix; transition conflicts are 409;
// anything else is the store misbehaving.
func httpError(err error) error {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	case errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"field":  vErr.Field,
			"reason": string(vErr.Reason),
		})
	case errors.Is(err, ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
}

func (h *Handler) ListBoard(c echo.Context) error {
	board, err := h.svc.ListBoard(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, board)
}

// BoardCard pairs a record with its computed status. Status is only present
// on the active tab; history cards show the stored end date instead.
type BoardCard struct {
	Record *PatientRecord `json:"record"`
	Status *StatusInfo    `json:"status,omitempty"`
}

// ViewResponse is one filtered, ordered page of the board.
type ViewResponse struct {
	Tab  Tab                  `json:"tab"`
	Page *pagination.Response `json:"page"`
}

func (h *Handler) ViewBoard(c echo.Context) error {
	tab := ParseTab(c.QueryParam("tab"))
	search := c.QueryParam("q")

	records, err := h.svc.View(c.Request().Context(), tab, search)
	if err != nil {
		return httpError(err)
	}

	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(records))

	cards := make([]BoardCard, 0, hi-lo)
	for _, rec := range records[lo:hi] {
		card := BoardCard{Record: rec}
		if tab == TabActive {
			info, err := h.svc.Status(rec)
			if err != nil {
				return httpError(err)
			}
			card.Status = &info
		}
		cards = append(cards, card)
	}

	return c.JSON(http.StatusOK, ViewResponse{
		Tab:  tab,
		Page: pagination.NewResponse(cards, len(records), pg.Limit, pg.Offset),
	})
}

func (h *Handler) Create(c echo.Context) error {
	var rec PatientRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &rec); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Discharge(c echo.Context) error {
	rec, err := h.svc.Discharge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Restore(c echo.Context) error {
	rec, err := h.svc.Restore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Relocate(c echo.Context) error {
	var body struct {
		Location string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Relocate(c.Request().Context(), c.Param("id"), body.Location)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Extend(c echo.Context) error {
	var body struct {
		Days int `json:"days"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Extend(c.Request().Context(), c.Param("id"), body.Days)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) AddMessage(c echo.Context) error {
	var draft MessageDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.svc.AddMessage(c.Request().Context(), c.Param("id"), draft)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// MessageMeta returns the option lists for the message composer: the
// professional roles and the note types.
func (h *Handler) MessageMeta(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"roles": KnownRoles,
		"types": []MessageType{MessageObservation, MessageQuestion, MessageAlert},
	})
}

func (h *Handler) ListMessages(c echo.Context) error {
	msgs, err := h.svc.Messages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) ExportCSV(c echo.Context) error {
	tab := ParseTab(c.QueryParam("tab"))

	records, err := h.svc.View(c.Request().Context(), tab, c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}

	rows, err := BuildReport(records, tab, h.svc.now())
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="treatments_%s.csv"`, tab))
	c.Response().WriteHeader(http.StatusOK)
	return WriteCSV(c.Response(), rows)
}
