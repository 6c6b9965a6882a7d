package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/service"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
	"github.com/noah-isme/school-registry-api/pkg/response"
)

// TeacherHandler handles teacher endpoints.
type TeacherHandler struct {
	service *service.TeacherService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param search query string false "Search by name or email"
// @Param department query string false "Filter by department"
// @Param schoolYear query string false "Filter by school year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	var filter models.TeacherFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = c.Query("department")
	filter.SchoolYear = c.Query("schoolYear")
	filter.Page, filter.Limit = pageParams(c)

	teachers, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Teachers retrieved successfully", "teachers", teachers, pagination)
}

// Get godoc
// @Summary Get teacher with subject assignments
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Teacher retrieved successfully", "teacher", teacher)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.TeacherRequest true "Teacher payload"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Teacher created successfully", "teacher", teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.TeacherRequest true "Teacher payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Teacher updated successfully", "teacher", teacher)
}

// Delete godoc
// @Summary Delete teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	teacher, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Teacher deleted successfully", "teacher", teacher)
}

// ListSubjects godoc
// @Summary List a teacher's subject assignments
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param schoolYear query string false "Filter by school year"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers/{id}/subjects [get]
func (h *TeacherHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context(), c.Param("id"), c.Query("schoolYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Subjects retrieved successfully", "subjects", subjects)
}

// AssignSubjects godoc
// @Summary Replace a teacher's subject assignments for a school year
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.AssignSubjectsRequest true "Assignment payload"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teachers/{id}/subjects [post]
func (h *TeacherHandler) AssignSubjects(c *gin.Context) {
	var req service.AssignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.AssignSubjects(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Subjects assigned successfully", "teacher", teacher)
}
