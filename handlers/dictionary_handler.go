package handlers

import (
	"github.com/VanitasCaesar1/intake/dictionary"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DictionaryHandler serves the sign dictionary page.
type DictionaryHandler struct {
	dictionary *dictionary.Service
	logger     *zap.Logger
	validator  *validator.Validate
}

func NewDictionaryHandler(svc *dictionary.Service, logger *zap.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		dictionary: svc,
		logger:     logger,
		validator:  validator.New(),
	}
}

// ListWords searches, filters, sorts and pages the catalog.
func (h *DictionaryHandler) ListWords(c *fiber.Ctx) error {
	var q dictionary.Query
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters", err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return validationFailed(c, err)
	}

	page, err := h.dictionary.Search(c.Context(), q)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *DictionaryHandler) wordID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *DictionaryHandler) invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(CodeInvalidRequest, "Word ID must be a positive integer", c.Params("id")))
}

func (h *DictionaryHandler) GetWord(c *fiber.Ctx) error {
	id, ok := h.wordID(c)
	if !ok {
		return h.invalidID(c)
	}
	w, err := h.dictionary.Word(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(w)
}

func (h *DictionaryHandler) GetStats(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.dictionary.Stats(c.Context()))
}

func (h *DictionaryHandler) GetPractice(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"words": h.dictionary.Practice(c.Context()),
	})
}

func (h *DictionaryHandler) ToggleLearn(c *fiber.Ctx) error {
	id, ok := h.wordID(c)
	if !ok {
		return h.invalidID(c)
	}
	w, err := h.dictionary.ToggleLearn(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	message := "已开始学习\"" + w.Chinese + "\""
	if !w.Learned {
		message = "已取消学习\"" + w.Chinese + "\""
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message, "word": w})
}

func (h *DictionaryHandler) ToggleMastered(c *fiber.Ctx) error {
	id, ok := h.wordID(c)
	if !ok {
		return h.invalidID(c)
	}
	w, err := h.dictionary.ToggleMastered(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	message := "恭喜！您已掌握\"" + w.Chinese + "\""
	if !w.Mastered {
		message = "已取消掌握\"" + w.Chinese + "\""
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message, "word": w})
}

func (h *DictionaryHandler) ResetProgress(c *fiber.Ctx) error {
	if err := h.dictionary.Reset(c.Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "学习进度已重置"})
}
