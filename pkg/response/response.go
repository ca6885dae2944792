package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// Response unified outcome envelope.
// Design notes:
// 1. Success mirrors Code==0 so clients without a code table can still branch
// 2. Code is the business code (not the HTTP status)
// 3. Data carries the payload on success and correction figures on failure
//    (shortfall list, remaining balance)
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Outcome builds the envelope for a (data, err) pair returned by a use case.
func Outcome(data interface{}, err error) Response {
	if err == nil {
		return Response{Success: true, Code: 0, Message: "success", Data: data}
	}
	appErr := apperrors.GetAppError(err)
	return Response{
		Success: false,
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    appErr.Data,
	}
}

// Success writes a 200 success envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Outcome(data, nil))
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Outcome(data, nil))
}

// Error writes the failure envelope (AppError aware).
// Usage:
//
//	result, err := uc.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// internal causes are logged, never returned
	if appErr.Err != nil {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.Error(appErr.Err),
		)
	}

	_ = c.Error(err)
	c.JSON(apperrors.HTTPStatus(appErr.Code), Outcome(nil, appErr))
}

// ErrorWithCode writes a custom code and message.
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}
