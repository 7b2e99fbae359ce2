package lead

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes mounts the lead pipeline under the admin group.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	leads := r.Group("/leads")
	{
		leads.GET("", handler.List)
		leads.GET("/stats", handler.Stats)
		leads.GET("/feed", handler.Feed)
		leads.GET("/:id", handler.Get)
		leads.PATCH("/:id", handler.Update)
		leads.PATCH("/:id/status", handler.ChangeStatus)
		leads.PATCH("/:id/assign", handler.Assign)
		leads.POST("/:id/notes", handler.AddNote)
	}
}
