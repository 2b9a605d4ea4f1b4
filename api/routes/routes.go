package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aquaman122/auto-report/api/handlers"
	"github.com/aquaman122/auto-report/api/middleware"
)

// SetupRoutes wires every endpoint onto the engine. Static mounts expose
// uploaded audio and generated documents for direct download links.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, uploadDir, summaryDir string) {
	r.Use(middleware.CORS())

	r.GET("/health", h.Health.Check)
	r.GET("/health/detailed", h.Health.Detailed)

	r.Static("/uploads", uploadDir)
	r.Static("/summaries", summaryDir)

	api := r.Group("/api")

	audio := api.Group("/audio")
	{
		audio.POST("/upload", h.Audio.Upload)
		audio.POST("/batch", h.Audio.Batch)
		audio.POST("/transcribe", h.Audio.Transcribe)
		audio.GET("/files", h.Audio.ListFiles)
		audio.GET("/files/:id", h.Audio.GetFile)
		audio.GET("/status/:id", h.Audio.GetStatus)
		audio.GET("/stats", h.Audio.GetStats)
	}

	meeting := api.Group("/meeting")
	{
		meeting.GET("", h.Meeting.List)
		meeting.POST("", h.Meeting.Create)
		meeting.GET("/stats/overview", h.Meeting.Stats)
		meeting.GET("/:id", h.Meeting.Get)
		meeting.PUT("/:id", h.Meeting.Update)
		meeting.DELETE("/:id", h.Meeting.Delete)
		meeting.PATCH("/:id/approval", h.Meeting.UpdateApproval)
		meeting.GET("/:id/actions", h.Meeting.GetActionItems)
		meeting.PATCH("/actions/:actionId", h.Meeting.UpdateActionItem)
	}

	task := api.Group("/task")
	{
		task.GET("/:taskId", h.Task.GetStatus)
		task.DELETE("/:taskId", h.Task.Cancel)
	}

	document := api.Group("/document")
	{
		document.POST("/generate", h.Document.Generate)
		document.GET("", h.Document.List)
		document.GET("/templates", h.Document.Templates)
		document.GET("/download/:fileName", h.Document.Download)
		document.GET("/preview/:fileName", h.Document.Preview)
		document.DELETE("/:fileName", h.Document.Delete)
	}
}
