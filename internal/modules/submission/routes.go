package submission

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts the submit endpoint.
func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/forms/:slug/submit", handler.Submit)
}

// RegisterAdminRoutes mounts submission inspection under the admin group.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/forms/:id/submissions", handler.ListByForm)
	r.GET("/submissions/:id", handler.Get)
}
