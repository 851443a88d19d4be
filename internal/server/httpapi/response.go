package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func messageJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}

// internalError logs err and answers 500 without any internal detail.
func (s *HTTPServer) internalError(c echo.Context, msg string, err error) error {
	s.logger.Error(c.Request().Context(), msg, "error", err)
	return messageJSON(c, http.StatusInternalServerError, msg)
}
