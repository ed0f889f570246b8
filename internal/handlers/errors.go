package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/service"
)

// toHTTPError maps a service error onto the status code the client sees.
func toHTTPError(err error) *echo.HTTPError {
	var se *service.Error
	if !errors.As(err, &se) {
		return echo.NewHTTPError(http.StatusInternalServerError, service.MsgInternal).SetInternal(err)
	}

	switch se.Kind {
	case service.KindValidation, service.KindInvalidCredentials:
		return echo.NewHTTPError(http.StatusBadRequest, se.Message).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, service.MsgInternal).SetInternal(err)
	}
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := service.MsgInternal

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = fmt.Sprint(m)
		}
	}
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Int("status", code).Msg("Request failed")
		message = service.MsgInternal
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, models.ErrorResponse{Error: message})
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
