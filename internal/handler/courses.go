package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

// CourseHandler exposes the course catalog and the material viewer.  The
// viewer is replayed from the query on every request: ?title opens a course,
// ?doc selects a document, and ?action=back|close applies the modal's back
// or close control to the result.
type CourseHandler struct{ *Deps }

func NewCourseHandler(d *Deps) *CourseHandler { return &CourseHandler{Deps: d} }

func (h *CourseHandler) viewer(c echo.Context) (catalog.ViewerState, error) {
	v := catalog.NewViewer(h.Catalog, h.Materials)
	title := c.QueryParam("title")
	if title == "" {
		return v.Close(), nil
	}
	s := v.Open(title)
	if raw := c.QueryParam("doc"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return s, echo.NewHTTPError(http.StatusBadRequest, "doc must be an index")
		}
		if s, err = v.Select(c.Request().Context(), i); err != nil {
			return s, err
		}
	}
	switch c.QueryParam("action") {
	case "":
		return s, nil
	case "back":
		return v.Back(), nil
	case "close":
		return v.Close(), nil
	default:
		return s, echo.NewHTTPError(http.StatusBadRequest, "action must be back or close")
	}
}

// Page: GET /courses.
func (h *CourseHandler) Page(c echo.Context) error {
	s, err := h.viewer(c)
	if he, ok := err.(*echo.HTTPError); ok {
		return he
	}
	if err != nil {
		return h.internalError(c, "open document failed", err)
	}
	if s.State == catalog.StateClosed {
		return c.Redirect(http.StatusSeeOther, LandingPath)
	}
	return c.Render(http.StatusOK, view.PageCourse, view.NewCoursePage(s))
}

// APIList: GET /v1/courses.
func (h *CourseHandler) APIList(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"courses": h.Catalog.Courses()})
}

// APIView: GET /v1/courses/view.
func (h *CourseHandler) APIView(c echo.Context) error {
	s, err := h.viewer(c)
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	if err != nil {
		return h.internalError(c, "open document failed", err)
	}
	return c.JSON(http.StatusOK, s)
}
