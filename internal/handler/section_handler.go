package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/service"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
	"github.com/noah-isme/school-registry-api/pkg/response"
)

// SectionHandler handles section endpoints.
type SectionHandler struct {
	service *service.SectionService
}

// NewSectionHandler constructs a section handler.
func NewSectionHandler(svc *service.SectionService) *SectionHandler {
	return &SectionHandler{service: svc}
}

// List godoc
// @Summary List sections
// @Tags Sections
// @Produce json
// @Param search query string false "Search by name"
// @Param gradeLevel query string false "Filter by grade level"
// @Param schoolYear query string false "Filter by school year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	var filter models.SectionFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.GradeLevel = c.Query("gradeLevel")
	filter.SchoolYear = c.Query("schoolYear")
	filter.Page, filter.Limit = pageParams(c)

	sections, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Sections retrieved successfully", "sections", sections, pagination)
}

// Get godoc
// @Summary Get section with adviser, subjects and students
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	section, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Section retrieved successfully", "section", section)
}

// Create godoc
// @Summary Create section with subjects and students
// @Tags Sections
// @Accept json
// @Produce json
// @Param payload body service.CreateSectionRequest true "Section payload"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req service.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Section created successfully", "section", section)
}

// Update godoc
// @Summary Update section, optionally replacing subjects and students
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.UpdateSectionRequest true "Section payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections/{id} [put]
func (h *SectionHandler) Update(c *gin.Context) {
	var req service.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Section updated successfully", "section", section)
}

// Delete godoc
// @Summary Delete section and its relations
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	section, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Section deleted successfully", "section", section)
}

// ReplaceSubjects godoc
// @Summary Replace a section's subject offerings
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.ReplaceSectionSubjectsRequest true "Subjects payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections/{id}/subjects [post]
func (h *SectionHandler) ReplaceSubjects(c *gin.Context) {
	var req service.ReplaceSectionSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.service.ReplaceSubjects(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Section subjects updated successfully", "section", section)
}

// ReplaceStudents godoc
// @Summary Replace a section's student enrollments
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.ReplaceSectionStudentsRequest true "Students payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sections/{id}/students [post]
func (h *SectionHandler) ReplaceStudents(c *gin.Context) {
	var req service.ReplaceSectionStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.service.ReplaceStudents(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Section students updated successfully", "section", section)
}

// ExportRoster godoc
// @Summary Export the section roster as CSV or PDF
// @Tags Sections
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Section ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /sections/{id}/roster [get]
func (h *SectionHandler) ExportRoster(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", service.RosterFormatCSV)

	payload, contentType, err := h.service.ExportRoster(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := service.RosterFormatCSV
	if contentType == "application/pdf" {
		ext = service.RosterFormatPDF
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=roster-%s.%s", id, ext))
	c.Data(http.StatusOK, contentType, payload)
}
