package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// recovery 捕获 handler 中的 panic 并返回 500
func recovery(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("请求处理发生 panic",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.String("request_id", requestID(c)))
				err = fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("%v", r))
			}
		}()
		return c.Next()
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			status = ferr.Code
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("请求失败", zap.Error(err), zap.String("path", c.Path()))
		}
		return c.Status(status).JSON(ResponseData{
			Code:    codeFor(status),
			Message: err.Error(),
		})
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL_SERVER_ERROR"
		}
		return "ERROR"
	}
}
