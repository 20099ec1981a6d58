package controllers

import (
	"net/http"

	"storefront-admin/models"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts returns a paginated product list with variants and media.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	products, total, svcErr := pc.productService.ListProducts(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta":     paginationMeta(page, limit, total),
	})
}

func (pc *ProductController) GetProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	product, svcErr := pc.productService.GetProduct(ctx.Request.Context(), id)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if !bindJSON(ctx, &req) {
		return
	}
	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

// UpdateProduct applies the fields present in the body.
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if !bindJSON(ctx, &req) {
		return
	}
	product, svcErr := pc.productService.UpdateProduct(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), id); svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (pc *ProductController) SetFeatured(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.SetFeaturedRequest
	if !bindJSON(ctx, &req) {
		return
	}
	product, svcErr := pc.productService.SetFeatured(ctx.Request.Context(), id, *req.Featured)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// GetVariants returns the editor state of the product's variants.
func (pc *ProductController) GetVariants(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	editor, svcErr := pc.productService.GetVariants(ctx.Request.Context(), id)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"editor": editor, "duplicates": nonNil(editor.Duplicates())})
}

// SaveVariants replaces the variant set of a product.
func (pc *ProductController) SaveVariants(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "product")
	if !ok {
		return
	}
	var req models.SaveVariantsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	editor, svcErr := pc.productService.SaveVariants(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"editor": editor})
}

// ApplyEditorAction runs one edit against the posted editor state and
// returns the new state with its duplicate labels.
func (pc *ProductController) ApplyEditorAction(ctx *gin.Context) {
	var req models.EditorActionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, svcErr := pc.productService.ApplyEditorAction(req.Editor, req.Action)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
