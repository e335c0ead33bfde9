package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// maxDocumentSize caps uploaded documents at 10 MiB
const maxDocumentSize = 10 << 20

// DocumentController handles student documents
type DocumentController struct {
	documentService *services.DocumentService
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService *services.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// CreateDocument registers a document hosted elsewhere
// @Summary Add document link
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDocumentRequest true "Document"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /documents [post]
func (c *DocumentController) CreateDocument(ctx *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	document, err := c.documentService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(document, "Document created"))
}

// UploadDocument stores an uploaded file as a document
// @Summary Upload document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Param type formData string false "Document type, defaults to the file's content type"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document uploaded"
// @Failure 400 {object} dto.ErrorResponse "Missing or oversized file"
// @Failure 502 {object} dto.ErrorResponse "Storage error"
// @Router /documents/upload [post]
func (c *DocumentController) UploadDocument(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid or missing file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if file.Size > maxDocumentSize {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "File too large").WithDetails("Documents are limited to 10 MB")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	document, err := c.documentService.Upload(ctx.Request.Context(), middleware.CurrentUserID(ctx), ctx.PostForm("type"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(document, "Document uploaded"))
}

// GetMyDocuments lists the caller's documents
// @Summary Own documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Router /documents/me [get]
func (c *DocumentController) GetMyDocuments(ctx *gin.Context) {
	documents, err := c.documentService.ListMine(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(documents, ""))
}

// GetStudentDocuments lists a student's documents
// @Summary Student documents
// @Description Readable by admins and the student's assigned agent
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /documents/student/{studentId} [get]
func (c *DocumentController) GetStudentDocuments(ctx *gin.Context) {
	documents, err := c.documentService.ListForStudent(ctx.Request.Context(), middleware.CurrentActor(ctx), ctx.Param("studentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(documents, ""))
}

// DeleteDocument deletes one of the caller's documents
// @Summary Delete document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} dto.APIResponse "Document deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	if err := c.documentService.Delete(ctx.Request.Context(), middleware.CurrentUserID(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Document deleted"))
}
