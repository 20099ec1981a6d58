package controllers

import (
	"context"
	"net/http"

	"storefront-admin/models"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
)

// Authenticator signs admins in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, *services.ServiceError)
}

type AuthController struct {
	authService Authenticator
}

func NewAuthController(authService Authenticator) *AuthController {
	return &AuthController{authService: authService}
}

// LoginInfo describes the login call for clients that follow a legacy
// login redirect with GET.
func (ac *AuthController) LoginInfo(ctx *gin.Context) {
	ctx.Header("Allow", http.MethodPost)
	ctx.JSON(http.StatusOK, gin.H{
		"method": http.MethodPost,
		"path":   ctx.Request.URL.Path,
		"fields": []string{"email", "password"},
	})
}

// Login exchanges admin credentials for a bearer token.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, svcErr := ac.authService.Login(ctx.Request.Context(), req.Email, req.Password)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, res)
}
