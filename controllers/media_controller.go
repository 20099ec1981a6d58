package controllers

import (
	"net/http"
	"strconv"

	apperrors "storefront-admin/common/errors"
	"storefront-admin/models"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	mediaService services.MediaService
}

func NewMediaController(mediaService services.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

func (mc *MediaController) ListMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	media, svcErr := mc.mediaService.List(ctx.Request.Context(), productID)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"media": media})
}

// LinkMedia attaches an image hosted elsewhere.
func (mc *MediaController) LinkMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.LinkMediaRequest
	if !bindJSON(ctx, &req) {
		return
	}
	media, svcErr := mc.mediaService.Link(ctx.Request.Context(), productID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, media)
}

// UploadMedia stores a multipart "image" file in the bucket and attaches it.
func (mc *MediaController) UploadMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, services.MaxImageSize+1<<20)

	fh, err := ctx.FormFile("image")
	if err != nil {
		apperrors.Respond(ctx, apperrors.New(http.StatusBadRequest, "Image file is required", err))
		return
	}
	file, err := fh.Open()
	if err != nil {
		apperrors.Respond(ctx, apperrors.New(http.StatusBadRequest, "Failed to read image file", err))
		return
	}
	defer file.Close()

	isPrimary, _ := strconv.ParseBool(ctx.PostForm("is_primary"))
	media, svcErr := mc.mediaService.Upload(ctx.Request.Context(), productID, services.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
		IsPrimary:   isPrimary,
	})
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, media)
}

// PresignMedia returns a presigned PUT URL for a direct browser upload.
func (mc *MediaController) PresignMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.PresignMediaRequest
	if !bindJSON(ctx, &req) {
		return
	}
	upload, svcErr := mc.mediaService.PresignUpload(ctx.Request.Context(), productID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, upload)
}

func (mc *MediaController) UpdateMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(ctx, "mediaId", "media")
	if !ok {
		return
	}
	var req models.UpdateMediaRequest
	if !bindJSON(ctx, &req) {
		return
	}
	media, svcErr := mc.mediaService.Update(ctx.Request.Context(), productID, mediaID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, media)
}

func (mc *MediaController) SetPrimary(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(ctx, "mediaId", "media")
	if !ok {
		return
	}
	media, svcErr := mc.mediaService.SetPrimary(ctx.Request.Context(), productID, mediaID)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, media)
}

func (mc *MediaController) DeleteMedia(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(ctx, "mediaId", "media")
	if !ok {
		return
	}
	if svcErr := mc.mediaService.Delete(ctx.Request.Context(), productID, mediaID); svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}
