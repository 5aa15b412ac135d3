// Package rest wires the gin router, grounded on the teacher's api.RegisterRoutes
// — without the GraphQL/tenant/API-key middleware stack, which has no
// counterpart in this spec's single-tenant, unauthenticated surface (spec
// §1 Non-goals: "no per-user auth").
package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/customeros/mailserver/api/rest/handlers"
	"github.com/customeros/mailserver/api/rest/mcp"
)

// RegisterRoutes mounts the /api/v1 REST surface and its /llm/mcp RPC
// mirror (spec §6) onto r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", h.Status())

		configs := v1.Group("/smtp-configs")
		{
			configs.GET("", h.ListAccounts())
			configs.POST("", h.CreateAccount())
			configs.GET("/:id", h.GetAccount())
			configs.PUT("/:id", h.UpdateAccount())
			configs.DELETE("/:id", h.DeleteAccount())
			configs.GET("/:id/test-connection", h.TestConnection())
			configs.POST("/:id/process", h.Process())
		}

		emails := v1.Group("/emails")
		{
			emails.GET("", h.ListEmails())
			emails.GET("/search", h.SearchEmails())
			emails.GET("/:id", h.GetEmail())
			emails.POST("/:id/reply", h.ReplyEmail())
			emails.POST("/:id/forward", h.ForwardEmail())
		}

		v1.POST("/send-email", h.SendEmail())
		v1.POST("/send-email-with-attachments", h.SendEmailWithAttachments())
	}

	r.POST("/llm/mcp", mcp.Handler(h))
}
