package in

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cadence/internal/modules/review/dto"
	reviewin "cadence/internal/modules/review/port/in"
	"cadence/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase reviewin.Usecase
}

func NewHTTPHandler(usecase reviewin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.GET("/dashboard", h.dashboard)
	g.GET("/reviews", h.listReviews)
	g.GET("/reviews/:id", h.getReview)
	g.POST("/reviews/:id/defer", h.deferReview)
	g.POST("/study", h.logStudy)
	g.GET("/stats", h.stats)
	g.POST("/reindex", h.reindex)
}

func (h HTTPHandler) dashboard(c echo.Context) error {
	out, err := h.usecase.Dashboard(c.Request().Context(), dto.DashboardInput{Today: c.QueryParam("today")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) listReviews(c echo.Context) error {
	out, err := h.usecase.ListReviews(c.Request().Context(), dto.ListReviewsInput{
		From:   c.QueryParam("from"),
		To:     c.QueryParam("to"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) getReview(c echo.Context) error {
	out, err := h.usecase.GetReview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type deferRequest struct {
	Days int `json:"days"`
}

func (h HTTPHandler) deferReview(c echo.Context) error {
	req := deferRequest{}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return httpserver.BadRequest(err)
		}
	}
	out, err := h.usecase.Defer(c.Request().Context(), dto.DeferInput{ReviewID: c.Param("id"), Days: req.Days})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) logStudy(c echo.Context) error {
	input := dto.LogStudyInput{}
	if err := c.Bind(&input); err != nil {
		return httpserver.BadRequest(err)
	}
	out, err := h.usecase.LogStudy(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) stats(c echo.Context) error {
	out, err := h.usecase.Stats(c.Request().Context(), dto.StatsInput{
		Today: c.QueryParam("today"),
		From:  c.QueryParam("from"),
		To:    c.QueryParam("to"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) reindex(c echo.Context) error {
	out, err := h.usecase.Reindex(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
