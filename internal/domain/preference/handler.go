package preference

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo Repository
	now  func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/preferences/:key", h.Get)
	g.PUT("/preferences/:key", h.Put)
}

func (h *Handler) Get(c echo.Context) error {
	pref, err := h.repo.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "preference not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.JSON(http.StatusOK, pref)
}

func (h *Handler) Put(c echo.Context) error {
	var body struct {
		Author string `json:"author"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(body.Author) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "author is required")
	}

	pref := &AuthorPreference{
		Key:       c.Param("key"),
		Author:    strings.TrimSpace(body.Author),
		Role:      strings.TrimSpace(body.Role),
		UpdatedAt: h.now().UTC(),
	}
	if err := h.repo.Put(c.Request().Context(), pref); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.JSON(http.StatusOK, pref)
}
