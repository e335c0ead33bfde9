package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/pkg/helpers"
)

func respondPage[T any](ctx *gin.Context, page *services.Paged[T]) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      page.Items,
		Pagination: helpers.NewPaginationInfo(page.Total, page.Page, page.Size),
	}, ""))
}

func respondCount(ctx *gin.Context, count int64) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: count}, ""))
}

func pageOf(page, size int) repositories.Page {
	return repositories.Page{Page: page, Size: size}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
