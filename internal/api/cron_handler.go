// internal/api/cron_handler.go
package api

import (
	"net/http"
	"time"

	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/service"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the scheduled passes as HTTP triggers so an external
// scheduler (or an operator) can run them on demand. Every endpoint sits
// behind CronSecretMiddleware and returns the pass report it ran.
type CronHandler struct {
	notifications service.NotificationService
	emailDelivery service.EmailDeliveryService
	pushDelivery  service.PushDeliveryService
	regeneration  service.RegenerationService
	cronCfg       config.CronConfig
}

func NewCronHandler(
	notifications service.NotificationService,
	emailDelivery service.EmailDeliveryService,
	pushDelivery service.PushDeliveryService,
	regeneration service.RegenerationService,
	cronCfg config.CronConfig,
) *CronHandler {
	return &CronHandler{
		notifications: notifications,
		emailDelivery: emailDelivery,
		pushDelivery:  pushDelivery,
		regeneration:  regeneration,
		cronCfg:       cronCfg,
	}
}

// RunCandidateGeneration godoc
// @Summary Trigger the daily notification candidate pass
// @Tags Cron
// @Produce json
// @Success 200 {object} service.CandidateReport
// @Router /cron/notifications/candidates [post]
func (h *CronHandler) RunCandidateGeneration(c *gin.Context) {
	report, err := h.notifications.GenerateDailyCandidates(c.Request.Context(), time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Candidate generation pass failed.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// RunEmailDelivery godoc
// @Summary Trigger the email delivery pass
// @Tags Cron
// @Produce json
// @Success 200 {object} service.DeliveryReport
// @Router /cron/notifications/email [post]
func (h *CronHandler) RunEmailDelivery(c *gin.Context) {
	report, err := h.emailDelivery.DeliverPendingEmails(c.Request.Context(), time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Email delivery pass failed.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// RunPushDelivery godoc
// @Summary Trigger the push delivery pass
// @Tags Cron
// @Produce json
// @Success 200 {object} service.DeliveryReport
// @Router /cron/notifications/push [post]
func (h *CronHandler) RunPushDelivery(c *gin.Context) {
	report, err := h.pushDelivery.DeliverPendingPushes(c.Request.Context(), time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Push delivery pass failed.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// RunRegenerationSweep godoc
// @Summary Trigger the weekly plan regeneration sweep
// @Description When regeneration is disabled by configuration, the sweep is not run and an empty report is returned.
// @Tags Cron
// @Produce json
// @Success 200 {object} service.SweepReport
// @Router /cron/regeneration [post]
func (h *CronHandler) RunRegenerationSweep(c *gin.Context) {
	if !h.cronCfg.RegenerationEnabled {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "message": "Regeneration sweep is disabled."})
		return
	}
	report, err := h.regeneration.RunWeeklySweep(c.Request.Context(), time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Regeneration sweep failed.")
		return
	}
	c.JSON(http.StatusOK, report)
}
