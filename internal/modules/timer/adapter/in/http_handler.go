package in

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"cadence/internal/modules/timer/dto"
	timerin "cadence/internal/modules/timer/port/in"
	"cadence/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase timerin.Usecase
}

func NewHTTPHandler(usecase timerin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.GET("/timer", h.state)
	g.POST("/timer/start", h.start)
	g.POST("/timer/pause", h.command(h.usecase.Pause))
	g.POST("/timer/resume", h.command(h.usecase.Resume))
	g.POST("/timer/finish", h.command(h.usecase.RequestFinish))
	g.POST("/timer/cancel", h.command(h.usecase.CancelFinish))
	g.POST("/timer/discard", h.command(h.usecase.Discard))
	g.POST("/timer/confirm", h.confirm)
	g.POST("/timer/commit", h.commit)
}

func (h HTTPHandler) state(c echo.Context) error {
	out, err := h.usecase.State(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) start(c echo.Context) error {
	input := dto.StartInput{}
	if err := c.Bind(&input); err != nil {
		return httpserver.BadRequest(err)
	}
	out, err := h.usecase.Start(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) command(fn func(context.Context) (dto.CommandOutput, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		out, err := fn(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h HTTPHandler) confirm(c echo.Context) error {
	out, err := h.usecase.ConfirmFinish(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) commit(c echo.Context) error {
	input := dto.CommitInput{}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&input); err != nil {
			return httpserver.BadRequest(err)
		}
	}
	out, err := h.usecase.Commit(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
