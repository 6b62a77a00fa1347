package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/middleware"
)

// Handlers groups every HTTP handler served under /api.
type Handlers struct {
	Auth         *AuthHandler
	Tasks        *TaskHandler
	KPIs         *KPIHandler
	Launches     *LaunchHandler
	Publications *PublicationHandler
	Ideas        *IdeaHandler
	Directory    *DirectoryHandler
	Templates    *TemplateHandler
	Exports      *ExportHandler
	Stream       *StreamHandler
	Assistant    *AssistantHandler
}

// RegisterRoutes mounts the API on api. Everything except signup, login
// and logout requires a session.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentAccount)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", h.Tasks.ListTasks)
		tasks.POST("", h.Tasks.CreateTask)
		tasks.GET("/overdue", h.Tasks.ListOverdue)
		tasks.GET("/:id", h.Tasks.GetTask)
		tasks.PATCH("/:id", h.Tasks.UpdateTask)
		tasks.DELETE("/:id", h.Tasks.DeleteTask)
		tasks.POST("/:id/subtasks/:subtask_id/toggle", h.Tasks.ToggleSubtask)
	}

	kpis := protected.Group("/kpis")
	{
		kpis.GET("", h.KPIs.ListKPIs)
		kpis.POST("", h.KPIs.CreateKPI)
		kpis.POST("/recalculate", h.KPIs.Recalculate)
		kpis.POST("/import", h.KPIs.ImportKPIs)
		kpis.GET("/:id", h.KPIs.GetKPI)
		kpis.PATCH("/:id", h.KPIs.UpdateKPI)
		kpis.DELETE("/:id", h.KPIs.DeleteKPI)
	}

	launches := protected.Group("/launches")
	{
		launches.GET("", h.Launches.ListLaunches)
		launches.POST("", h.Launches.CreateLaunch)
		launches.GET("/:id", middleware.RequireLaunch(h.Launches.launches), h.Launches.GetLaunch)
		launches.PATCH("/:id", h.Launches.UpdateLaunch)
		launches.DELETE("/:id", h.Launches.DeleteLaunch)
		launches.POST("/:id/actions", h.Launches.AddAction)
		launches.PATCH("/:id/actions/:action_id", h.Launches.UpdateAction)
		launches.DELETE("/:id/actions/:action_id", h.Launches.DeleteAction)
		launches.PUT("/:id/actions/:action_id/subtasks/:subtask_id", h.Launches.SetSubtask)
		launches.GET("/:id/schedule", h.Launches.PreviewSchedule)
		launches.POST("/:id/schedule", h.Launches.ApplyTemplates)
		launches.POST("/:id/content", h.Launches.PlanContent)
	}

	pubs := protected.Group("/publications")
	{
		pubs.GET("", h.Publications.ListPublications)
		pubs.POST("", h.Publications.CreatePublication)
		pubs.GET("/:id", h.Publications.GetPublication)
		pubs.PATCH("/:id", h.Publications.UpdatePublication)
		pubs.DELETE("/:id", h.Publications.DeletePublication)
	}

	ideas := protected.Group("/ideas")
	{
		ideas.GET("", h.Ideas.ListIdeas)
		ideas.POST("", h.Ideas.CreateIdea)
		ideas.GET("/:id", h.Ideas.GetIdea)
		ideas.PATCH("/:id", h.Ideas.UpdateIdea)
		ideas.DELETE("/:id", h.Ideas.DeleteIdea)
		ideas.PUT("/:id/evaluation", h.Ideas.Evaluate)
		ideas.DELETE("/:id/evaluation", h.Ideas.ClearEvaluation)
		ideas.POST("/:id/attachments", h.Ideas.AddAttachment)
		ideas.POST("/:id/links", h.Ideas.AddLink)
		ideas.DELETE("/:id/attachments/:name", h.Ideas.RemoveAttachment)
	}
	protected.POST("/score", h.Ideas.Score)

	participants := protected.Group("/participants")
	{
		participants.GET("", h.Directory.ListParticipants)
		participants.POST("", h.Directory.CreateParticipant)
		participants.GET("/:id", h.Directory.GetParticipant)
		participants.PATCH("/:id", h.Directory.UpdateParticipant)
		participants.DELETE("/:id", h.Directory.DeleteParticipant)
	}

	perspectives := protected.Group("/perspectives")
	{
		perspectives.GET("", h.Directory.ListPerspectives)
		perspectives.GET("/usage", h.Directory.PerspectiveUsage)
		perspectives.POST("", h.Directory.CreatePerspective)
		perspectives.DELETE("/:id", h.Directory.DeletePerspective)
	}

	protected.GET("/templates", h.Templates.ListTemplates)
	protected.GET("/templates/schedule", h.Templates.Schedule)

	protected.GET("/export", h.Exports.Kinds)
	protected.GET("/export/:kind", h.Exports.Download)

	protected.GET("/stream", h.Stream.Changes)

	protected.POST("/assistant/publications", h.Assistant.DraftPublications)
}
