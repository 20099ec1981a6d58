package controllers

import (
	"net/http"

	"storefront-admin/middleware"
	"storefront-admin/models"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListOrders returns a filtered, paginated order list.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	var filter models.OrderFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	page, limit := parsePaginationParams(ctx)

	orders, total, svcErr := oc.orderService.ListOrders(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   paginationMeta(page, limit, total),
	})
}

// GetOrder returns one order with its items, events and available actions.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "order")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), id)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// MarkPaid confirms the payment of an order.
func (oc *OrderController) MarkPaid(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "order")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.MarkPaid(ctx.Request.Context(), id, middleware.Actor(ctx))
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// MarkShipped marks a paid order as shipped.
func (oc *OrderController) MarkShipped(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "order")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.MarkShipped(ctx.Request.Context(), id, middleware.Actor(ctx))
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// DashboardStats returns the home page KPIs.
func (oc *OrderController) DashboardStats(ctx *gin.Context) {
	stats, svcErr := oc.orderService.Stats(ctx.Request.Context())
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
