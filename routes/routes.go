package routes

import (
	"storefront-admin/controllers"
	"storefront-admin/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes mounts the public login endpoint at /auth/login and at
// /admin/login, where legacy login URLs redirect. The /admin/login routes sit
// outside the guarded admin group. mw runs before the handlers, typically a
// stricter rate limiter.
func RegisterAuthRoutes(r *gin.Engine, c *controllers.AuthController, mw ...gin.HandlerFunc) {
	auth := r.Group("/auth")
	auth.Use(mw...)
	auth.POST("/login", c.Login)

	login := r.Group(middleware.AdminLoginPath)
	login.Use(mw...)
	login.POST("", c.Login)
	login.GET("", c.LoginInfo)
}

// RegisterAdminGroup creates the /admin group guarded by auth.
func RegisterAdminGroup(r *gin.Engine, auth gin.HandlerFunc) *gin.RouterGroup {
	admin := r.Group("/admin")
	admin.Use(auth)
	return admin
}

func RegisterOrderRoutes(admin *gin.RouterGroup, oc *controllers.OrderController, cc *controllers.ContactController) {
	admin.GET("/dashboard/stats", oc.DashboardStats)

	orders := admin.Group("/orders")
	orders.GET("", oc.ListOrders)
	orders.GET("/:id", oc.GetOrder)
	orders.PATCH("/:id/mark-paid", oc.MarkPaid)
	orders.PATCH("/:id/mark-shipped", oc.MarkShipped)
	orders.GET("/:id/whatsapp-link", cc.WhatsAppLink)
	orders.POST("/:id/whatsapp", cc.SendWhatsApp)
}

func RegisterProductRoutes(admin *gin.RouterGroup, pc *controllers.ProductController, mc *controllers.MediaController) {
	products := admin.Group("/products")
	products.GET("", pc.ListProducts)
	products.POST("", pc.CreateProduct)
	products.GET("/:id", pc.GetProduct)
	products.PATCH("/:id", pc.UpdateProduct)
	products.DELETE("/:id", pc.DeleteProduct)
	products.PATCH("/:id/featured", pc.SetFeatured)
	products.GET("/:id/variants", pc.GetVariants)
	products.PUT("/:id/variants", pc.SaveVariants)

	products.GET("/:id/media", mc.ListMedia)
	products.POST("/:id/media/link", mc.LinkMedia)
	products.POST("/:id/media/upload", mc.UploadMedia)
	products.POST("/:id/media/presign", mc.PresignMedia)
	products.PATCH("/:id/media/:mediaId", mc.UpdateMedia)
	products.PATCH("/:id/media/:mediaId/primary", mc.SetPrimary)
	products.DELETE("/:id/media/:mediaId", mc.DeleteMedia)

	admin.POST("/variants/editor", pc.ApplyEditorAction)
}
