package in

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
	"cadence/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase catalogin.Usecase
}

func NewHTTPHandler(usecase catalogin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.GET("/subjects", h.listSubjects)
	g.POST("/subjects", h.addSubject)
	g.POST("/subjects/:id/archive", h.archiveSubject)
	g.GET("/templates", h.listTemplates)
	g.POST("/templates", h.addTemplate)
	g.POST("/templates/:id/default", h.setDefaultTemplate)
	g.GET("/plan", h.plan)
}

func (h HTTPHandler) listSubjects(c echo.Context) error {
	includeArchived := false
	if raw := c.QueryParam("archived"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return httpserver.BadRequest(err)
		}
		includeArchived = parsed
	}
	out, err := h.usecase.ListSubjects(c.Request().Context(), includeArchived)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) addSubject(c echo.Context) error {
	input := dto.AddSubjectInput{}
	if err := c.Bind(&input); err != nil {
		return httpserver.BadRequest(err)
	}
	out, err := h.usecase.AddSubject(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) archiveSubject(c echo.Context) error {
	out, err := h.usecase.ArchiveSubject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) listTemplates(c echo.Context) error {
	out, err := h.usecase.ListTemplates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) addTemplate(c echo.Context) error {
	input := dto.AddTemplateInput{}
	if err := c.Bind(&input); err != nil {
		return httpserver.BadRequest(err)
	}
	out, err := h.usecase.AddTemplate(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h HTTPHandler) setDefaultTemplate(c echo.Context) error {
	out, err := h.usecase.SetDefaultTemplate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h HTTPHandler) plan(c echo.Context) error {
	out, err := h.usecase.Plan(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
