package controllers

import (
	"net/http"

	"storefront-admin/middleware"
	"storefront-admin/models"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
)

type ContactController struct {
	contactService services.ContactService
}

func NewContactController(contactService services.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

// WhatsAppLink returns the wa.me link for the order's customer. The message
// query parameter overrides the default greeting.
func (cc *ContactController) WhatsAppLink(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "order")
	if !ok {
		return
	}
	link, svcErr := cc.contactService.WhatsAppLink(ctx.Request.Context(), id, ctx.Query("message"))
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, link)
}

// SendWhatsApp sends the message through the configured provider.
func (cc *ContactController) SendWhatsApp(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "order")
	if !ok {
		return
	}
	var req models.WhatsAppMessageRequest
	if ctx.Request.ContentLength != 0 && !bindJSON(ctx, &req) {
		return
	}

	order, svcErr := cc.contactService.SendWhatsApp(ctx.Request.Context(), id, req.Message, middleware.Actor(ctx))
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order, "message": "WhatsApp message sent"})
}
