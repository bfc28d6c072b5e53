package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups everything mounted under /api.
type Handlers struct {
	History     *HistoryHandler
	Diagnosis   *DiagnosisHandler
	Dictionary  *DictionaryHandler
	Recognition *RecognitionHandler
}

func (h Handlers) Register(app fiber.Router) {
	api := app.Group("/api")

	if h.Recognition != nil {
		api.Get("/health", h.Recognition.Health)

		rec := api.Group("/recognition")
		rec.Post("/recognize", h.Recognition.Recognize)
		rec.Post("/frame", h.Recognition.PushFrame)
		rec.Post("/start", h.Recognition.Start)
		rec.Post("/stop", h.Recognition.Stop)
		rec.Get("/status", h.Recognition.Status)
		rec.Get("/remote-history", h.Recognition.RemoteHistory)
	}

	if h.History != nil {
		hist := api.Group("/history")
		hist.Get("/", h.History.ListRecords)
		hist.Get("/stats", h.History.GetStats)
		hist.Get("/trends", h.History.GetTrends)
		hist.Get("/insights", h.History.GetInsights)
		hist.Get("/chart", h.History.GetChart)
		hist.Get("/today", h.History.GetToday)
		hist.Get("/export", h.History.Export)
		hist.Post("/", h.History.CreateRecord)
		hist.Post("/:id/error", h.History.ReportError)
		hist.Delete("/:id", h.History.DeleteRecord)
		hist.Delete("/", h.History.ClearHistory)
	}

	if h.Diagnosis != nil {
		diag := api.Group("/diagnosis")
		diag.Get("/questions", h.Diagnosis.ListQuestions)
		diag.Get("/doctor", h.Diagnosis.GetDoctorInfo)
		diag.Put("/doctor", h.Diagnosis.UpdateDoctorInfo)
		diag.Get("/recommendation", h.Diagnosis.GetRecommendation)
		diag.Post("/recommendation", h.Diagnosis.Recommend)

		sessions := diag.Group("/sessions")
		sessions.Post("/", h.Diagnosis.CreateSession)
		sessions.Get("/:id", h.Diagnosis.GetSession)
		sessions.Post("/:id/answer", h.Diagnosis.SelectOption)
		sessions.Post("/:id/custom", h.Diagnosis.SubmitCustom)
		sessions.Post("/:id/next", h.Diagnosis.Next)
		sessions.Post("/:id/prev", h.Diagnosis.Prev)
		sessions.Get("/:id/card", h.Diagnosis.GetCard)
	}

	if h.Dictionary != nil {
		dict := api.Group("/dictionary")
		dict.Get("/words", h.Dictionary.ListWords)
		dict.Get("/words/:id", h.Dictionary.GetWord)
		dict.Post("/words/:id/learn", h.Dictionary.ToggleLearn)
		dict.Post("/words/:id/master", h.Dictionary.ToggleMastered)
		dict.Get("/stats", h.Dictionary.GetStats)
		dict.Get("/practice", h.Dictionary.GetPractice)
		dict.Delete("/progress", h.Dictionary.ResetProgress)
	}
}
