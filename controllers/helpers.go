package controllers

import (
	"math"
	"net/http"
	"strconv"

	apperrors "storefront-admin/common/errors"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	page := ctx.DefaultQuery("page", "1")
	limit := ctx.DefaultQuery("limit", "10")

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		pageInt = p
	}

	if l, err := strconv.Atoi(limit); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}

func paginationMeta(page, limit int, total int64) gin.H {
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
	}
}

// parseIDParam reads a uuid path parameter, answering 400 when it is malformed.
func parseIDParam(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		apperrors.Respond(ctx, apperrors.New(http.StatusBadRequest, "Invalid "+label+" ID format", err))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body, answering 400 on malformed input.
func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"kind":    apperrors.KindValidation,
			"details": err.Error(),
		})
		return false
	}
	return true
}

func respondServiceError(ctx *gin.Context, svcErr *services.ServiceError) {
	apperrors.Respond(ctx, svcErr.AppError())
}
