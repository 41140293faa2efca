package main

import (
	"consultation-platform/internal/httpapi"
	"consultation-platform/internal/rbac"
	"consultation-platform/internal/transport"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: Protect with Twilio signature validation in production.
	r.POST("/webhooks/twilio/recording-status", func(c *gin.Context) {
		form, err := transport.ParseTwilioRecordingStatus(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(400, gin.H{"error": "invalid form"})
			return
		}
		// The recording ref is stored when capture begins; the callback is
		// acknowledged so the provider stops retrying.
		c.JSON(200, gin.H{"received": form.RecordingSid, "completed": form.Completed()})
	})

	// Token issuance. Placeholder credential check lives in the handler.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// READING SESSION routes
		sessions := v1.Group("/reading-sessions")
		sessions.Use(rbac.RequireAnyRole(rbac.RoleReader, rbac.RoleClient))
		{
			sessions.POST("", h.CreateReadingSession)
			sessions.GET("/:session_id", h.GetReadingSession)
			sessions.POST("/:session_id/reveals", h.Reveal)

			// Draft generation and listing hang off the session; content
			// access goes through /v1/drafts with its own gate.
			sessions.POST("/:session_id/drafts", h.GenerateDraft)
			sessions.GET("/:session_id/drafts", h.ListDrafts)
		}

		// DRAFT content. Route-level RBAC admits readers; the draft service
		// itself only releases content to the session's assigned reader.
		drafts := v1.Group("/drafts")
		drafts.Use(rbac.RequireAnyRole(rbac.RoleReader))
		{
			drafts.GET("/:draft_id", h.GetDraft)
		}

		// CALL routes
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleReader, rbac.RoleClient, rbac.RoleSupport))
		{
			calls.POST("", h.ScheduleCall)
			calls.POST("/:call_id/start", h.StartCall)
			calls.POST("/:call_id/consent", h.RecordConsent)
			calls.POST("/:call_id/capture", h.BeginCapture)
			calls.POST("/:call_id/end", h.EndCall)
		}

		// EXTENSION routes
		extensions := v1.Group("/extensions")
		extensions.Use(rbac.RequireAnyRole(rbac.RoleReader, rbac.RoleClient))
		{
			extensions.POST("", h.RequestExtension)
		}

		// REPORT routes (internal ops only)
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleSupport, rbac.RoleSuperAdmin))
		{
			reports.GET("/consent-coverage", h.ConsentCoverageReport)
			reports.GET("/draft-access", h.DraftAccessReport)
			reports.GET("/reveal-volume", h.RevealVolumeReport)
		}
	}
}
