package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// CatalogController handles institutions, programs, intakes and subjects
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// CreateInstitution handles institution creation
// @Summary Create institution
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InstitutionRequest true "Institution"
// @Success 201 {object} dto.APIResponse{data=models.Institution} "Institution created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /institutions [post]
func (c *CatalogController) CreateInstitution(ctx *gin.Context) {
	var req dto.InstitutionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	institution := req.ToModel()
	if err := c.catalogService.CreateInstitution(ctx.Request.Context(), institution); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(institution, "Institution created"))
}

// GetInstitutions lists institutions
// @Summary List institutions
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param country query string false "Country"
// @Param name query string false "Name contains"
// @Param status query string false "ACTIVE, PENDING or INACTIVE"
// @Param type query string false "UNIVERSITY, COLLEGE, SCHOOL or INSTITUTE"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Institution}} "Institutions"
// @Router /institutions [get]
func (c *CatalogController) GetInstitutions(ctx *gin.Context) {
	var query dto.InstitutionListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	filter := repositories.InstitutionFilter{
		Page:    pageOf(query.Page, query.Size),
		Country: query.Country,
		Name:    query.Name,
	}
	if query.Status != "" {
		status := models.InstituteStatus(query.Status)
		filter.Status = &status
	}
	if query.Type != "" {
		kind := models.InstituteType(query.Type)
		filter.Type = &kind
	}

	page, err := c.catalogService.GetInstitutions(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetInstitutionByID returns one institution
// @Summary Get institution
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institution ID"
// @Success 200 {object} dto.APIResponse{data=models.Institution} "Institution"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [get]
func (c *CatalogController) GetInstitutionByID(ctx *gin.Context) {
	institution, err := c.catalogService.GetInstitutionByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(institution, ""))
}

// UpdateInstitution replaces an institution
// @Summary Update institution
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institution ID"
// @Param request body dto.InstitutionRequest true "Institution"
// @Success 200 {object} dto.APIResponse{data=models.Institution} "Institution updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [put]
func (c *CatalogController) UpdateInstitution(ctx *gin.Context) {
	var req dto.InstitutionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	institution := req.ToModel()
	institution.ID = ctx.Param("id")
	if err := c.catalogService.UpdateInstitution(ctx.Request.Context(), institution); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.catalogService.GetInstitutionByID(ctx.Request.Context(), institution.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "Institution updated"))
}

// DeleteInstitution deletes an institution with its programs
// @Summary Delete institution
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institution ID"
// @Success 200 {object} dto.APIResponse "Institution deleted"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [delete]
func (c *CatalogController) DeleteInstitution(ctx *gin.Context) {
	if err := c.catalogService.DeleteInstitution(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Institution deleted"))
}

func programFilter(query *dto.ProgramListQuery) repositories.ProgramFilter {
	return repositories.ProgramFilter{
		Page:                 pageOf(query.Page, query.Size),
		Search:               query.Search,
		InstitutionID:        optional(query.InstitutionID),
		Country:              query.Country,
		Level:                query.Level,
		IntakeID:             optional(query.IntakeID),
		SubjectID:            optional(query.SubjectID),
		ScholarshipAvailable: query.ScholarshipAvailable,
		EnglishWaiver:        query.EnglishWaiver,
	}
}

// CreateProgram handles program creation
// @Summary Create program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProgramRequest true "Program"
// @Success 201 {object} dto.APIResponse{data=models.Program} "Program created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Institution, intake or subject not found"
// @Router /programs [post]
func (c *CatalogController) CreateProgram(ctx *gin.Context) {
	var req dto.ProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	program := req.ToModel()
	if err := c.catalogService.CreateProgram(ctx.Request.Context(), program); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(program, "Program created"))
}

// GetPrograms lists programs
// @Summary List programs
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search title"
// @Param institutionId query string false "Institution ID"
// @Param country query string false "Institution country"
// @Param level query string false "Study level"
// @Param intake query string false "Intake ID"
// @Param subjectArea query string false "Subject ID"
// @Param scholarshipAvailable query bool false "Scholarship available"
// @Param englishWaiver query bool false "English waiver"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Program}} "Programs"
// @Router /programs [get]
func (c *CatalogController) GetPrograms(ctx *gin.Context) {
	var query dto.ProgramListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	page, err := c.catalogService.GetPrograms(ctx.Request.Context(), programFilter(&query))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetProgramsCount counts programs matching the filter
// @Summary Count programs
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Program count"
// @Router /programs/count [get]
func (c *CatalogController) GetProgramsCount(ctx *gin.Context) {
	var query dto.ProgramListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	count, err := c.catalogService.GetProgramsCount(ctx.Request.Context(), programFilter(&query))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetProgramByID returns one program with its institution, intake and subject
// @Summary Get program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [get]
func (c *CatalogController) GetProgramByID(ctx *gin.Context) {
	program, err := c.catalogService.GetProgramByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(program, ""))
}

// UpdateProgram replaces a program
// @Summary Update program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param request body dto.ProgramRequest true "Program"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [put]
func (c *CatalogController) UpdateProgram(ctx *gin.Context) {
	var req dto.ProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	program := req.ToModel()
	program.ID = ctx.Param("id")
	if err := c.catalogService.UpdateProgram(ctx.Request.Context(), program); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.catalogService.GetProgramByID(ctx.Request.Context(), program.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "Program updated"))
}

// DeleteProgram deletes a program
// @Summary Delete program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} dto.APIResponse "Program deleted"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [delete]
func (c *CatalogController) DeleteProgram(ctx *gin.Context) {
	if err := c.catalogService.DeleteProgram(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Program deleted"))
}

// CreateIntake handles intake creation
// @Summary Create intake
// @Tags intakes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NamedRequest true "Intake"
// @Success 201 {object} dto.APIResponse{data=models.Intake} "Intake created"
// @Failure 409 {object} dto.ErrorResponse "Intake already exists"
// @Router /intakes [post]
func (c *CatalogController) CreateIntake(ctx *gin.Context) {
	var req dto.NamedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	intake, err := c.catalogService.CreateIntake(ctx.Request.Context(), req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(intake, "Intake created"))
}

// GetIntakes lists intakes
// @Summary List intakes
// @Tags intakes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Intake} "Intakes"
// @Router /intakes [get]
func (c *CatalogController) GetIntakes(ctx *gin.Context) {
	intakes, err := c.catalogService.GetIntakes(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(intakes, ""))
}

// DeleteIntake deletes an intake
// @Summary Delete intake
// @Tags intakes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intake ID"
// @Success 200 {object} dto.APIResponse "Intake deleted"
// @Failure 404 {object} dto.ErrorResponse "Intake not found"
// @Router /intakes/{id} [delete]
func (c *CatalogController) DeleteIntake(ctx *gin.Context) {
	if err := c.catalogService.DeleteIntake(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Intake deleted"))
}

// CreateSubject handles subject creation
// @Summary Create subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NamedRequest true "Subject"
// @Success 201 {object} dto.APIResponse{data=models.Subject} "Subject created"
// @Failure 409 {object} dto.ErrorResponse "Subject already exists"
// @Router /subjects [post]
func (c *CatalogController) CreateSubject(ctx *gin.Context) {
	var req dto.NamedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	subject, err := c.catalogService.CreateSubject(ctx.Request.Context(), req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(subject, "Subject created"))
}

// GetSubjects lists subjects
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Subject} "Subjects"
// @Router /subjects [get]
func (c *CatalogController) GetSubjects(ctx *gin.Context) {
	subjects, err := c.catalogService.GetSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects, ""))
}

// DeleteSubject deletes a subject
// @Summary Delete subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.APIResponse "Subject deleted"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [delete]
func (c *CatalogController) DeleteSubject(ctx *gin.Context) {
	if err := c.catalogService.DeleteSubject(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Subject deleted"))
}
