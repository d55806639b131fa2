package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/domain/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:       http.StatusBadRequest,
	apperr.KindCapacity:         http.StatusUnprocessableEntity,
	apperr.KindUnauthorized:     http.StatusUnauthorized,
	apperr.KindForbidden:        http.StatusForbidden,
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindConflict:         http.StatusConflict,
	apperr.KindPartialFailure:   http.StatusMultiStatus,
	apperr.KindStoreUnavailable: http.StatusServiceUnavailable,
	apperr.KindInternal:         http.StatusInternalServerError,
}

func statusOf(err error) int {
	if s, ok := kindStatus[apperr.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// writeError is the single mapping from usecase errors to responses.
// INTERNAL hides its message and is logged with the route.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	status := statusOf(err)
	body := ErrorResponse{Error: err.Error(), Field: apperr.FieldOf(err)}

	switch status {
	case http.StatusInternalServerError:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
		body = ErrorResponse{Error: "internal error"}
	case http.StatusServiceUnavailable:
		log.WithError(err).WithField("path", c.Path()).Warn("store unavailable")
		c.Response().Header().Set("Retry-After", "1")
	}
	return c.JSON(status, body)
}

// decode binds and validates req. When ok is false the 400 has already been written.
func decode(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

type pathIDReq struct {
	ID string `json:"id" validate:"hex32"`
}

// validPathID checks the named route params, ":id" when none are given.
// When ok is false the 400 has already been written.
func validPathID(c echo.Context, names ...string) (ok bool, err error) {
	if len(names) == 0 {
		names = []string{"id"}
	}
	var details []FieldError
	for _, name := range names {
		if err := c.Validate(&pathIDReq{ID: c.Param(name)}); err != nil {
			for _, fe := range ToFieldErrors(err) {
				fe.Field = name
				details = append(details, fe)
			}
		}
	}
	if len(details) > 0 {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}
	return true, nil
}
