package handlers

import (
	"context"

	"github.com/VanitasCaesar1/intake/recognition"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RecognitionClient is the slice of *recognition.Client the handlers use.
type RecognitionClient interface {
	CheckHealth(ctx context.Context) recognition.Health
	Recognize(ctx context.Context, image string) (recognition.Result, error)
	GetHistory(ctx context.Context) recognition.RemoteHistory
}

// RecognitionHandler relays camera frames to the recognition service.
type RecognitionHandler struct {
	client    RecognitionClient
	poller    *recognition.Poller
	sink      recognition.Sink
	logger    *zap.Logger
	validator *validator.Validate
}

// Frames are base64 data URLs; 8MB leaves room for a 1080p JPEG.
type FrameRequest struct {
	Image string `json:"image" validate:"required,max=8388608"`
}

func NewRecognitionHandler(client RecognitionClient, poller *recognition.Poller, sink recognition.Sink, logger *zap.Logger) *RecognitionHandler {
	return &RecognitionHandler{
		client:    client,
		poller:    poller,
		sink:      sink,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *RecognitionHandler) parseFrame(c *fiber.Ctx) (string, error) {
	var req FrameRequest
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return req.Image, h.validator.Struct(&req)
}

// Recognize runs one recognition and stores a successful result.
func (h *RecognitionHandler) Recognize(c *fiber.Ctx) error {
	image, err := h.parseFrame(c)
	if err != nil {
		return requestError(c, err)
	}

	result, err := h.client.Recognize(c.Context(), image)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !result.Recognized() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": result.Error,
		})
	}

	record, err := h.sink.Append(c.Context(), result.Result, result.StoredConfidence())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "识别成功: " + record.Text,
		"record":  record,
	})
}

// PushFrame buffers the latest camera frame for the poller.
func (h *RecognitionHandler) PushFrame(c *fiber.Ctx) error {
	image, err := h.parseFrame(c)
	if err != nil {
		return requestError(c, err)
	}
	h.poller.PushFrame(image)
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *RecognitionHandler) Start(c *fiber.Ctx) error {
	if err := h.poller.Start(); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "手语识别已开始",
		"status":  h.poller.Status(),
	})
}

func (h *RecognitionHandler) Stop(c *fiber.Ctx) error {
	if err := h.poller.Stop(); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "手语识别已停止",
		"status":  h.poller.Status(),
	})
}

func (h *RecognitionHandler) Status(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.poller.Status())
}

// RemoteHistory proxies the recognition service's own history.
func (h *RecognitionHandler) RemoteHistory(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.client.GetHistory(c.Context()))
}

// Health reports this service and the recognition backend. It never fails.
func (h *RecognitionHandler) Health(c *fiber.Ctx) error {
	backend := h.client.CheckHealth(c.Context())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "ok",
		"recognition": backend,
		"connected":   backend.Status != "error",
	})
}
