package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/util/logger"
)

var log = logger.New("http")

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleError writes err as a JSON error response. Errors that are not an
// *model.AppError become 500s without leaking their message.
func HandleError(c echo.Context, err error) error {
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		appErr = model.NewInternalServerError(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		log.Errorw("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	message := appErr.Message
	if appErr.Code == model.ValidationErrorCode {
		message = appErr.Error()
	}

	return c.JSON(appErr.Status, ErrorResponse{Error: ErrorBody{Code: appErr.Code, Message: message}})
}
