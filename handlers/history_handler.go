package handlers

import (
	"fmt"
	"net/url"

	"github.com/VanitasCaesar1/intake/history"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HistoryHandler serves the history page and the record mutations of the
// diagnosis page.
type HistoryHandler struct {
	history   *history.Service
	logger    *zap.Logger
	validator *validator.Validate
}

func NewHistoryHandler(svc *history.Service, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		history:   svc,
		logger:    logger,
		validator: validator.New(),
	}
}

// parseFilter reads the filter from the query string. Missing parameters
// keep their page defaults.
func (h *HistoryHandler) parseFilter(c *fiber.Ctx) (models.FilterState, error) {
	filter := models.DefaultFilterState()
	if err := c.QueryParser(&filter); err != nil {
		return filter, err
	}
	return filter, h.validator.Struct(&filter)
}

func (h *HistoryHandler) withView(c *fiber.Ctx, fn func(*history.View) error) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return requestError(c, err)
	}
	view, err := h.history.Query(c.Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return fn(view)
}

// ListRecords returns the filtered records with the summary for the header.
func (h *HistoryHandler) ListRecords(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		records := v.Records()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"records":  records,
			"count":    len(records),
			"total":    len(v.History()),
			"filter":   v.Filter,
			"summary":  v.Summary(),
			"fallback": len(records) == 0 && len(v.History()) > 0,
		})
	})
}

func (h *HistoryHandler) GetStats(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		return c.Status(fiber.StatusOK).JSON(v.Summary())
	})
}

func (h *HistoryHandler) GetTrends(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		return c.Status(fiber.StatusOK).JSON(v.Trends())
	})
}

func (h *HistoryHandler) GetInsights(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		return c.Status(fiber.StatusOK).JSON(v.Insights())
	})
}

func (h *HistoryHandler) GetChart(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		return c.Status(fiber.StatusOK).JSON(v.Chart())
	})
}

func (h *HistoryHandler) GetToday(c *fiber.Ctx) error {
	return h.withView(c, func(v *history.View) error {
		return c.Status(fiber.StatusOK).JSON(v.Today())
	})
}

// CreateRecord logs a manual entry.
func (h *HistoryHandler) CreateRecord(c *fiber.Ctx) error {
	var req models.CreateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("failed to parse record", zap.Error(err))
		return badRequest(c, "Invalid request format", err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	record, err := h.history.Append(c.Context(), req.Text, req.Confidence)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// ReportError flags a record as misrecognized.
func (h *HistoryHandler) ReportError(c *fiber.Ctx) error {
	record, err := h.history.FlagError(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "已标记为识别错误",
		"record":  record,
	})
}

func (h *HistoryHandler) DeleteRecord(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.history.DeleteRecord(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "记录已删除",
		"id":      id,
	})
}

func (h *HistoryHandler) ClearHistory(c *fiber.Ctx) error {
	if err := h.history.ClearAll(c.Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "历史记录已清空"})
}

// Export downloads the active data set. format defaults to json.
func (h *HistoryHandler) Export(c *fiber.Ctx) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return requestError(c, err)
	}

	file, err := h.history.Export(c.Context(), filter, c.Query("format", history.FormatJSON))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType+"; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, contentDisposition(file.Filename))
	return c.Status(fiber.StatusOK).Send(file.Data)
}

// contentDisposition carries the UTF-8 filename per RFC 6266 with an ASCII
// fallback for old clients.
func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="download"; filename*=UTF-8''%s`, url.PathEscape(filename))
}
