package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// handleListPatients lists patients, or finds one by ?codigo= or ?email=.
func (s *Server) handleListPatients(c *gin.Context) {
	if s.deps.Patients == nil {
		unavailable(c, "El registro de pacientes")
		return
	}
	ctx := c.Request.Context()

	if code := c.Query("codigo"); code != "" {
		p, err := s.deps.Patients.FindByCode(ctx, code)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*domain.Patient{p})
		return
	}
	if email := c.Query("email"); email != "" {
		p, err := s.deps.Patients.FindByEmail(ctx, email)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*domain.Patient{p})
		return
	}

	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	patients, err := s.deps.Patients.List(ctx, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (s *Server) handleGetPatient(c *gin.Context) {
	if s.deps.Patients == nil {
		unavailable(c, "El registro de pacientes")
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := s.deps.Patients.FindPatient(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreatePatient(c *gin.Context) {
	if s.deps.Patients == nil {
		unavailable(c, "El registro de pacientes")
		return
	}

	p, ok := bindPatient(c)
	if !ok {
		return
	}
	p.ID = 0

	if err := s.deps.Patients.Create(c.Request.Context(), p); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdatePatient(c *gin.Context) {
	if s.deps.Patients == nil {
		unavailable(c, "El registro de pacientes")
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, ok := bindPatient(c)
	if !ok {
		return
	}
	p.ID = id

	if err := s.deps.Patients.Update(c.Request.Context(), p); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePatient(c *gin.Context) {
	if s.deps.Patients == nil {
		unavailable(c, "El registro de pacientes")
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.deps.Patients.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindPatient decodes a patient body and checks the required fields.
func bindPatient(c *gin.Context) (*domain.Patient, bool) {
	var p domain.Patient
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido: "+err.Error())
		return nil, false
	}

	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	errs := &domain.ValidationErrors{}
	if p.Code == "" {
		errs.Add("codigoPaciente", "el código del paciente es obligatorio", p.Code)
	}
	if p.Name == "" {
		errs.Add("nombre", "el nombre del paciente es obligatorio", p.Name)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		errs.Add("email", "el correo electrónico no es válido", p.Email)
	}
	if errs.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Datos de entrada inválidos",
			"errors": errs.Errors,
		})
		return nil, false
	}
	return &p, true
}
