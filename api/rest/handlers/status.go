package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck is a liveness probe, grounded on the teacher's handlers.HealthCheck.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /status: aggregate counts plus scheduler state, shape
// backfilled from the original per SPEC_FULL.md §3.
func (h *Handlers) Status() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		accounts, err := h.repos.Accounts.List(ctx)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to load accounts", err)
			return
		}

		enabled := 0
		perAccount := make([]gin.H, 0, len(accounts))
		var totalMessages int64
		for _, a := range accounts {
			if a.Enabled {
				enabled++
			}
			count, err := h.repos.Messages.CountForAccount(ctx, a.ID)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to count messages", err)
				return
			}
			totalMessages += count
			perAccount = append(perAccount, gin.H{
				"accountId":            a.ID,
				"name":                 a.Name,
				"messages":             count,
				"totalEmailsProcessed": a.TotalEmailsProcessed,
				"connectionStatus":     a.ConnectionStatus,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"totalAccounts":   len(accounts),
			"enabledAccounts": enabled,
			"totalMessages":   totalMessages,
			"perAccount":      perAccount,
			"scheduler":       h.scheduler.Status(),
		})
	}
}
