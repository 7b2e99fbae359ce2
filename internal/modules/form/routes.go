package form

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts the endpoints the renderer and trigger
// orchestrator consume.
func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/forms/for-page", handler.ForPage)
	r.GET("/forms/:slug", handler.GetBySlug)
	r.GET("/forms/:slug/shown", handler.CheckShown)
	r.POST("/forms/:slug/shown", handler.MarkShown)
}

// RegisterAdminRoutes mounts form authoring under the admin group.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	forms := r.Group("/forms")
	{
		forms.POST("", handler.Create)
		forms.GET("", handler.List)
		forms.GET("/:id", handler.Get)
		forms.PUT("/:id", handler.Update)
		forms.POST("/:id/publish", handler.Publish)
		forms.POST("/:id/unpublish", handler.Unpublish)
		forms.DELETE("/:id", handler.Delete)
	}
}
