package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
)

// handlePredict runs one evaluation.
func (s *Server) handlePredict(c *gin.Context) {
	var req domain.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido: "+err.Error())
		return
	}

	resp, err := s.deps.Predictor.Predict(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListEvaluations(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	records, err := s.deps.History.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleGetEvaluation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	record, err := s.deps.History.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteEvaluation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.deps.History.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.WithField("evaluation_id", id).Info("Evaluation deleted")
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEvaluationsByPatient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	records, err := s.deps.History.ListByPatient(c.Request.Context(), id, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// handleEvaluationsByType lists evaluations that predicted the given
// canonical type.
func (s *Server) handleEvaluationsByType(c *gin.Context) {
	diabetesType := c.Param("tipo")
	if !domain.IsKnownDiabetesType(diabetesType) {
		badRequest(c, fmt.Sprintf("Tipo de diabetes desconocido: %s", diabetesType))
		return
	}
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	records, err := s.deps.History.ListByType(c.Request.Context(), diabetesType, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleStatistics(c *gin.Context) {
	stats, err := s.deps.Statistics.Compute(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleExport streams the whole history as a JSON attachment.
func (s *Server) handleExport(c *gin.Context) {
	export, err := history.BuildExport(c.Request.Context(), s.deps.History)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("evaluaciones-%s.json", export.ExportedAt.UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.IndentedJSON(http.StatusOK, export)
}

func (s *Server) handleArchiveExport(c *gin.Context) {
	if s.deps.Archive == nil {
		unavailable(c, "El archivo de exportaciones")
		return
	}

	result, err := history.ArchiveExport(c.Request.Context(), s.deps.History, s.deps.Archive, s.logger)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// handleImport loads a previous export. Records already present are skipped.
func (s *Server) handleImport(c *gin.Context) {
	imported, skipped, err := s.deps.History.ImportJSON(c.Request.Context(), c.Request.Body)
	if errors.Is(err, history.ErrInvalidExport) {
		s.logger.WithError(err).Warn("History import rejected")
		badRequest(c, "Exportación inválida: "+err.Error())
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("History imported")

	c.JSON(http.StatusOK, gin.H{
		"importadas": imported,
		"omitidas":   skipped,
	})
}
