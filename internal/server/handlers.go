package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"go.uber.org/zap"
)

// 消息类型
const (
	MessageTranslate       = "TRANSLATE"
	MessageTestTranslation = "TEST_TRANSLATION"
)

// Message 宿主发来的消息
type Message struct {
	Type     string                `json:"type"`
	Text     string                `json:"text"`
	Settings *translation.Settings `json:"settings,omitempty"`
}

// MessageResponse 消息回复，字段按消息类型取用
type MessageResponse struct {
	Success        bool              `json:"success"`
	Result         *providers.Result `json:"result,omitempty"`
	TranslatedText string            `json:"translatedText,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// ResponseData 管理接口的统一返回格式
type ResponseData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Results interface{} `json:"results,omitempty"`
}

const msgTestFailed = "翻译失败"

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var msg Message
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Error: err.Error()})
	}

	logger := s.logger.With(zap.String("request_id", requestID(c)), zap.String("type", msg.Type))
	if n := len([]rune(msg.Text)); n > MaxTextLength {
		logger.Warn("文本超过长度限制", zap.Int("length", n), zap.Int("limit", MaxTextLength))
	}

	switch msg.Type {
	case MessageTranslate:
		result := s.manager.Translate(c.UserContext(), msg.Text)
		return c.JSON(MessageResponse{Success: result.OK(), Result: &result})

	case MessageTestTranslation:
		if msg.Settings == nil {
			return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Error: "缺少 settings"})
		}
		result := s.manager.TestTranslation(c.UserContext(), msg.Settings, msg.Text)
		if result.OK() {
			return c.JSON(MessageResponse{Success: true, TranslatedText: result.TranslatedText})
		}
		errMsg := result.ErrorMessage
		if errMsg == "" {
			errMsg = msgTestFailed
		}
		return c.JSON(MessageResponse{Error: errMsg})

	default:
		logger.Debug("忽略未知消息类型")
		return c.JSON(MessageResponse{Success: true})
	}
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	settings, err := s.manager.Settings(c.UserContext())
	if err != nil {
		return err
	}
	if settings == nil {
		return c.Status(fiber.StatusNotFound).JSON(ResponseData{
			Code:    "NOT_CONFIGURED",
			Message: "请先配置翻译API",
		})
	}
	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: settings.Masked(),
	})
}

func (s *Server) putSettings(c *fiber.Ctx) error {
	var settings translation.Settings
	if err := c.BodyParser(&settings); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	err := s.manager.SaveSettings(c.UserContext(), &settings)
	var perr *providers.Error
	switch {
	case err == nil:
	case errors.As(err, &perr) && perr.Kind == providers.KindConfiguration:
		return c.Status(fiber.StatusBadRequest).JSON(ResponseData{
			Code:    "INVALID_SETTINGS",
			Message: perr.Message,
		})
	case errors.Is(err, translation.ErrNoSettingsStore):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	default:
		return err
	}

	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Settings saved",
		Results: settings.Masked(),
	})
}

func (s *Server) cacheStats(c *fiber.Ctx) error {
	stats, err := s.manager.CacheStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (s *Server) clearCache(c *fiber.Ctx) error {
	if err := s.manager.ClearCache(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Cache cleared",
	})
}

func (s *Server) quota(c *fiber.Ctx) error {
	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Quota retrieved",
		Results: s.manager.Quota(),
	})
}

func (s *Server) providerStats(c *fiber.Ctx) error {
	return c.JSON(ResponseData{
		Code:    "SUCCESS",
		Message: "Provider stats retrieved",
		Results: s.manager.ProviderStats(),
	})
}
