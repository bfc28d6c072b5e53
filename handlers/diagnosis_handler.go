package handlers

import (
	"github.com/VanitasCaesar1/intake/diagnosis"
	"github.com/VanitasCaesar1/intake/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DiagnosisHandler serves the guided intake of the diagnosis page.
type DiagnosisHandler struct {
	diagnosis *diagnosis.Service
	logger    *zap.Logger
	validator *validator.Validate
}

type AnswerRequest struct {
	Option string `json:"option" validate:"required,max=50"`
}

type CustomAnswerRequest struct {
	Text string `json:"text" validate:"required,max=200"`
}

type RecommendRequest struct {
	Symptoms []string `json:"symptoms" validate:"max=20,dive,max=200"`
}

func NewDiagnosisHandler(svc *diagnosis.Service, logger *zap.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{
		diagnosis: svc,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *DiagnosisHandler) state(c *fiber.Ctx, status int, st diagnosis.State, err error) error {
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(status).JSON(st)
}

func (h *DiagnosisHandler) CreateSession(c *fiber.Ctx) error {
	st, err := h.diagnosis.CreateSession(c.Context())
	return h.state(c, fiber.StatusCreated, st, err)
}

func (h *DiagnosisHandler) GetSession(c *fiber.Ctx) error {
	st, err := h.diagnosis.Session(c.Context(), c.Params("id"))
	return h.state(c, fiber.StatusOK, st, err)
}

// SelectOption answers the current question with a preset option.
func (h *DiagnosisHandler) SelectOption(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request format", err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}
	st, err := h.diagnosis.SelectOption(c.Context(), c.Params("id"), req.Option)
	return h.state(c, fiber.StatusOK, st, err)
}

// SubmitCustom answers the current question with free text.
func (h *DiagnosisHandler) SubmitCustom(c *fiber.Ctx) error {
	var req CustomAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request format", err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}
	st, err := h.diagnosis.SubmitCustom(c.Context(), c.Params("id"), req.Text)
	return h.state(c, fiber.StatusOK, st, err)
}

func (h *DiagnosisHandler) Next(c *fiber.Ctx) error {
	st, err := h.diagnosis.Next(c.Context(), c.Params("id"))
	return h.state(c, fiber.StatusOK, st, err)
}

func (h *DiagnosisHandler) Prev(c *fiber.Ctx) error {
	st, err := h.diagnosis.Prev(c.Context(), c.Params("id"))
	return h.state(c, fiber.StatusOK, st, err)
}

// GetCard downloads the intake card as text (default) or PDF.
func (h *DiagnosisHandler) GetCard(c *fiber.Ctx) error {
	card, err := h.diagnosis.Card(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	now := h.diagnosis.Now()
	switch format := c.Query("format", "text"); format {
	case "text", "txt":
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, contentDisposition(diagnosis.CardFilename(now, "txt")))
		return c.Status(fiber.StatusOK).SendString(card.Text())
	case "pdf":
		data, err := h.diagnosis.RenderPDF(card)
		if err != nil {
			h.logger.Warn("failed to render pdf card", zap.Error(err))
			return respondError(c, h.logger, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, contentDisposition(diagnosis.CardFilename(now, "pdf")))
		return c.Status(fiber.StatusOK).Send(data)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(CodeInvalidRequest, "Unsupported card format", format))
	}
}

func (h *DiagnosisHandler) GetDoctorInfo(c *fiber.Ctx) error {
	info, err := h.diagnosis.DoctorInfo(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(info)
}

// UpdateDoctorInfo overwrites all three doctor fields.
func (h *DiagnosisHandler) UpdateDoctorInfo(c *fiber.Ctx) error {
	var info models.DoctorInfo
	if err := c.BodyParser(&info); err != nil {
		return badRequest(c, "Invalid request format", err)
	}
	if err := h.validator.Struct(&info); err != nil {
		return validationFailed(c, err)
	}
	if err := h.diagnosis.SaveDoctorInfo(c.Context(), info); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "医生信息已保存",
		"doctor":   info,
		"complete": info.Complete(),
	})
}

// GetRecommendation recommends a department from the record history.
func (h *DiagnosisHandler) GetRecommendation(c *fiber.Ctx) error {
	dept, symptoms, err := h.diagnosis.HistoryRecommendation(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if symptoms == nil {
		symptoms = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"department": dept,
		"symptoms":   symptoms,
	})
}

// Recommend scores the symptoms in the request body.
func (h *DiagnosisHandler) Recommend(c *fiber.Ctx) error {
	var req RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request format", err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationFailed(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"department": h.diagnosis.Recommend(req.Symptoms),
	})
}

func (h *DiagnosisHandler) ListQuestions(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"questions": diagnosis.Questions(),
		"total":     diagnosis.TotalQuestions,
	})
}
