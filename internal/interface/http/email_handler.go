package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
	"github.com/oksasatya/egarage-auth/pkg/response"
)

// EmailHandler lets admins push a test message through the mail pipeline.
type EmailHandler struct {
	Mail   application.Mailer
	Logger logrus.FieldLogger
	Cfg    *config.Config
}

func NewEmailHandler(mail application.Mailer, logger logrus.FieldLogger, cfg *config.Config) *EmailHandler {
	return &EmailHandler{Mail: mail, Logger: logger, Cfg: cfg}
}

type sendEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Send POST /api/admin/email/test
// Without a body the universal login notification template is used.
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if h.Mail == nil {
		response.Error(c, http.StatusServiceUnavailable, "email pipeline unavailable", response.ErrorBody{Code: "mail_unavailable"})
		return
	}

	job := mailer.EmailJob{To: req.To}
	if req.Subject != "" && (req.Text != "" || req.HTML != "") {
		job.Subject, job.Text, job.HTML = req.Subject, req.Text, req.HTML
	} else {
		job.Template = mailtpl.Universal
		job.Data = mailtpl.NewLoginNotificationData(h.Cfg, "Test Recipient", req.To,
			mailtpl.WithIP(middleware.ClientIP(c)), mailtpl.WithUserAgent(c.GetHeader("User-Agent")))
	}

	if err := h.Mail.Enqueue(c.Request.Context(), job); err != nil {
		h.Logger.WithError(err).WithField("to", req.To).Warn("test email enqueue failed")
		response.Error(c, http.StatusBadGateway, "failed to enqueue email", response.ErrorBody{Code: "enqueue_failed"})
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"enqueued": true, "send_enabled": h.Cfg.MailSendEnabled}, "email enqueued")
}
