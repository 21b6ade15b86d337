package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 想定外のエラーはログに残して、利用者には中身を見せない。
func internalError(logger *zap.Logger, op string, err error) error {
	logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
