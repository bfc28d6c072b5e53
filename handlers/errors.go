package handlers

import (
	"github.com/VanitasCaesar1/intake/diagnosis"
	"github.com/VanitasCaesar1/intake/dictionary"
	"github.com/VanitasCaesar1/intake/history"
	"github.com/VanitasCaesar1/intake/recognition"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnavailable    = "RECOGNITION_UNAVAILABLE"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// Structured Error Responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func NewErrorResponse(code string, message string, details ...any) ErrorResponse {
	var detail any
	switch len(details) {
	case 0:
	case 1:
		detail = details[0]
	default:
		detail = details
	}
	return ErrorResponse{
		Code:    code,
		Message: message,
		Details: detail,
	}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Domain errors in match order. Anything else is a 500.
var errorMappings = []errorMapping{
	{history.ErrNotFound, fiber.StatusNotFound, CodeNotFound, "记录不存在"},
	{history.ErrEmptyText, fiber.StatusBadRequest, CodeValidation, "识别结果不能为空"},
	{history.ErrAlreadyEmpty, fiber.StatusConflict, CodeConflict, "历史记录已为空"},
	{history.ErrNothingToExport, fiber.StatusBadRequest, CodeInvalidRequest, "没有可导出的数据"},
	{history.ErrUnsupportedFormat, fiber.StatusBadRequest, CodeInvalidRequest, "不支持的导出格式"},
	{history.ErrInvalidFilter, fiber.StatusBadRequest, CodeValidation, "筛选条件无效"},

	{diagnosis.ErrSessionNotFound, fiber.StatusNotFound, CodeNotFound, "问诊会话不存在"},
	{diagnosis.ErrUnknownOption, fiber.StatusBadRequest, CodeValidation, "无效的选项"},
	{diagnosis.ErrEmptyCustomInput, fiber.StatusBadRequest, CodeValidation, "请输入自定义内容"},
	{diagnosis.ErrUnanswered, fiber.StatusConflict, CodeConflict, "请先回答当前问题"},
	{diagnosis.ErrAtFirstQuestion, fiber.StatusConflict, CodeConflict, "已经是第一个问题"},
	{diagnosis.ErrAtLastQuestion, fiber.StatusConflict, CodeConflict, "已经是最后一个问题"},
	{diagnosis.ErrIncompleteSession, fiber.StatusConflict, CodeConflict, "请完成所有问题并填写医生信息"},
	{diagnosis.ErrFontUnavailable, fiber.StatusServiceUnavailable, CodeInternal, "PDF字体不可用，请下载文本格式"},

	{dictionary.ErrWordNotFound, fiber.StatusNotFound, CodeNotFound, "词汇不存在"},
	{dictionary.ErrPageOutOfRange, fiber.StatusBadRequest, CodeInvalidRequest, "页码超出范围"},

	{recognition.ErrAlreadyRunning, fiber.StatusConflict, CodeConflict, "手语识别已在进行中"},
	{recognition.ErrNotRunning, fiber.StatusConflict, CodeConflict, "手语识别未在进行中"},
	{recognition.ErrUnavailable, fiber.StatusBadGateway, CodeUnavailable, recognition.MsgNetworkFailure},
}

// respondError writes the response for err and logs unexpected failures.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(NewErrorResponse(m.code, m.message, err.Error()))
		}
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	sentry.CaptureException(err)
	return c.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(CodeInternal, "Internal server error"))
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(CodeInvalidRequest, message, err.Error()))
}
