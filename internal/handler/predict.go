package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/queue"
	"github.com/223MapAction/Model-deploy/internal/service"
)

type PredictHandler struct {
	svc *service.PredictService
	log zerolog.Logger
}

func NewPredictHandler(svc *service.PredictService, log zerolog.Logger) *PredictHandler {
	return &PredictHandler{svc: svc, log: log.With().Str("component", "predict-handler").Logger()}
}

// Predict handles POST /image/predict.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	res, err := h.svc.Predict(c.Request.Context(), req)
	if err != nil {
		status, detail := h.clientError(err)
		c.JSON(status, model.ErrorResponse{Detail: Sanitize(detail, req.SensitiveStructures)})
		return
	}

	c.JSON(http.StatusOK, res)
}

// clientError maps a pipeline failure to the status code and the distinct
// per-stage message shown to the client. The full error is logged server
// side; database details never reach the response.
func (h *PredictHandler) clientError(err error) (int, string) {
	var pe *service.PipelineError
	if !errors.As(err, &pe) {
		h.log.Error().Err(err).Msg("prediction pipeline failed")
		return http.StatusInternalServerError, "Internal server error"
	}

	h.log.Error().Err(pe).Str("stage", pe.Stage).Msg("prediction pipeline failed")

	detail := pe.Message
	switch {
	case queue.IsTimeout(pe.Err):
		detail = pe.Message + ": stage timed out"
	case pe.Stage == "persist" && pe.Status == http.StatusInternalServerError:
		detail = "Database error"
	case pe.Err != nil:
		detail = pe.Message + ": " + pe.Err.Error()
	}
	return pe.Status, detail
}
