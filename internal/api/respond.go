package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/middleware"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// respondError maps domain errors to HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		validationErrs *domain.ValidationErrors
		validationErr  *domain.ValidationError
		fatal          *domain.FatalScoringError
	)

	correlationID := c.GetString(middleware.CorrelationKey)

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Datos de entrada inválidos",
			"errors":         validationErrs.Errors,
			"correlation_id": correlationID,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Datos de entrada inválidos",
			"errors":         []*domain.ValidationError{validationErr},
			"correlation_id": correlationID,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":          "Recurso no encontrado",
			"message":        err.Error(),
			"correlation_id": correlationID,
		})
	case errors.As(err, &fatal):
		s.logger.WithError(err).WithField("correlation_id", correlationID).Error("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "No se pudo completar la predicción",
			"correlation_id": correlationID,
		})
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"path":           c.FullPath(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "Error interno del servidor",
			"correlation_id": correlationID,
		})
	}
}

// badRequest answers 400 with a single message.
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":          message,
		"correlation_id": c.GetString(middleware.CorrelationKey),
	})
}

// unavailable answers 503 for features that were not configured.
func unavailable(c *gin.Context, feature string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":          feature + " no está configurado",
		"correlation_id": c.GetString(middleware.CorrelationKey),
	})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Identificador inválido: "+c.Param(name))
		return 0, false
	}
	return id, true
}

// pagination reads limit and offset query parameters.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			badRequest(c, "Parámetro limit inválido")
			return 0, 0, false
		}
		limit = v
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, "Parámetro offset inválido")
			return 0, 0, false
		}
		offset = v
	}
	return limit, offset, true
}
