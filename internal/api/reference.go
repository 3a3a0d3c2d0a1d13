package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleMLStatus(c *gin.Context) {
	status, err := s.deps.ML.Status(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// handleMLHealth probes the scorer now, ignoring the cached availability.
func (s *Server) handleMLHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.ML.Health(c.Request.Context()))
}

func (s *Server) handleMLTestPrediction(c *gin.Context) {
	result := s.deps.ML.TestPrediction(c.Request.Context())
	if result.Status != "SUCCESS" {
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMLTypesAvailable(c *gin.Context) {
	coverage, err := s.deps.ML.TypesAvailable(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverage)
}

func (s *Server) handleListTypes(c *gin.Context) {
	types, err := s.deps.Types.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// handleGetType looks a type up by its canonical English name.
func (s *Server) handleGetType(c *gin.Context) {
	info, err := s.deps.Types.FindByCanonicalName(c.Request.Context(), c.Param("nombre"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleListGuides(c *gin.Context) {
	guides, err := s.deps.Guides.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guides)
}

func (s *Server) handleGetGuide(c *gin.Context) {
	guide, err := s.deps.Guides.FindByField(c.Request.Context(), c.Param("campo"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guide)
}
