package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	custom_err "github.com/customeros/mailserver/api/errors"
	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/interfaces"
)

// ListEmails handles GET /emails: paginated, newest-first (spec §6).
func (h *Handlers) ListEmails() gin.HandlerFunc {
	return func(c *gin.Context) {
		skip := intQuery(c, "skip", 0)
		limit := intQuery(c, "limit", 50)
		if limit > 100 {
			limit = 100
		}

		messages, total, err := h.repos.Messages.List(c.Request.Context(), skip, limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to list emails", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"emails": messages, "total": total, "skip": skip, "limit": limit})
	}
}

// GetEmail handles GET /emails/{id}.
func (h *Handlers) GetEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		message, err := h.repos.Messages.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to load email", err)
			return
		}
		if message == nil {
			respondError(c, http.StatusNotFound, "email not found", mailerrors.ErrMessageNotFound)
			return
		}

		if c.Query("include_content") == "false" {
			message.BodyHTML = ""
		}
		c.JSON(http.StatusOK, message)
	}
}

// SendEmailRequest is the JSON body of POST /send-email (spec §6).
type SendEmailRequest struct {
	AccountID uint     `json:"accountId"`
	To        []string `json:"to"`
	Cc        []string `json:"cc"`
	Bcc       []string `json:"bcc"`
	Subject   string   `json:"subject"`
	Text      string   `json:"text"`
	HTML      string   `json:"html"`
	ReplyTo   string   `json:"replyTo"`
}

// SendEmail handles POST /send-email.
func (h *Handlers) SendEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}

		errs := custom_err.NewMultiErrors()
		if req.AccountID == 0 {
			errs.Add("accountId", "accountId is required", errors.New("accountId missing"))
		}
		if len(req.To) == 0 {
			errs.Add("to", "at least one recipient is required", errors.New("to is empty"))
		}
		if errs.HasErrors() {
			respondValidation(c, errs)
			return
		}

		account, err := h.repos.Accounts.GetByID(c.Request.Context(), req.AccountID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to look up account", err)
			return
		}
		if account == nil {
			respondError(c, http.StatusNotFound, "account not found", mailerrors.ErrAccountNotFound)
			return
		}

		msg := &interfaces.OutboundMessage{
			To: req.To, Cc: req.Cc, Bcc: req.Bcc,
			Subject: req.Subject,
			Body:    interfaces.OutboundBody{Text: req.Text, HTML: req.HTML},
			ReplyTo: req.ReplyTo,
		}
		if err := h.sender.Send(c.Request.Context(), account, msg); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to send email", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// SendEmailWithAttachments handles POST /send-email-with-attachments: a
// multipart upload carrying a JSON-encoded "payload" field alongside file
// parts, per spec §6.
func (h *Handlers) SendEmailWithAttachments() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid multipart body", err)
			return
		}

		payloads := form.Value["payload"]
		if len(payloads) == 0 {
			respondError(c, http.StatusBadRequest, "missing payload field", errors.New("payload missing"))
			return
		}
		var req SendEmailRequest
		if err := json.Unmarshal([]byte(payloads[0]), &req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid payload JSON", err)
			return
		}

		account, err := h.repos.Accounts.GetByID(c.Request.Context(), req.AccountID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to look up account", err)
			return
		}
		if account == nil {
			respondError(c, http.StatusNotFound, "account not found", mailerrors.ErrAccountNotFound)
			return
		}

		var attachments []interfaces.OutboundAttachment
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "failed to read attachment", err)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				respondError(c, http.StatusBadRequest, "failed to read attachment", err)
				return
			}
			attachments = append(attachments, interfaces.OutboundAttachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		msg := &interfaces.OutboundMessage{
			To: req.To, Cc: req.Cc, Bcc: req.Bcc,
			Subject:     req.Subject,
			Body:        interfaces.OutboundBody{Text: req.Text, HTML: req.HTML},
			ReplyTo:     req.ReplyTo,
			Attachments: attachments,
		}
		if err := h.sender.Send(c.Request.Context(), account, msg); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to send email", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// ReplyEmailRequest is the body of POST /emails/{id}/reply.
type ReplyEmailRequest struct {
	AccountID  uint     `json:"accountId"`
	Text       string   `json:"text"`
	HTML       string   `json:"html"`
	Additional []string `json:"additionalRecipients"`
}

// ReplyEmail handles POST /emails/{id}/reply.
func (h *Handlers) ReplyEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		original, err := h.repos.Messages.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to load email", err)
			return
		}
		if original == nil {
			respondError(c, http.StatusNotFound, "email not found", mailerrors.ErrMessageNotFound)
			return
		}

		var req ReplyEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}

		errs := custom_err.NewMultiErrors()
		if req.AccountID == 0 {
			errs.Add("accountId", "accountId is required", errors.New("accountId missing"))
		}
		if req.Text == "" && req.HTML == "" {
			errs.Add("body", "please provide a valid html or text body (or both)", errors.New("body is empty"))
		}
		if errs.HasErrors() {
			respondValidation(c, errs)
			return
		}

		account, err := h.repos.Accounts.GetByID(c.Request.Context(), req.AccountID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to look up account", err)
			return
		}
		if account == nil {
			respondError(c, http.StatusNotFound, "account not found", mailerrors.ErrAccountNotFound)
			return
		}

		body := interfaces.OutboundBody{Text: req.Text, HTML: req.HTML}
		if err := h.sender.Reply(c.Request.Context(), account, original, body, req.Additional); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to send reply", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// ForwardEmailRequest is the body of POST /emails/{id}/forward.
type ForwardEmailRequest struct {
	AccountID  uint     `json:"accountId"`
	Recipients []string `json:"recipients"`
	Text       string   `json:"text"`
	HTML       string   `json:"html"`
}

// ForwardEmail handles POST /emails/{id}/forward.
func (h *Handlers) ForwardEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		original, err := h.repos.Messages.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to load email", err)
			return
		}
		if original == nil {
			respondError(c, http.StatusNotFound, "email not found", mailerrors.ErrMessageNotFound)
			return
		}

		var req ForwardEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}

		errs := custom_err.NewMultiErrors()
		if req.AccountID == 0 {
			errs.Add("accountId", "accountId is required", errors.New("accountId missing"))
		}
		if len(req.Recipients) == 0 {
			errs.Add("recipients", "at least one recipient is required", errors.New("recipients empty"))
		}
		if errs.HasErrors() {
			respondValidation(c, errs)
			return
		}

		account, err := h.repos.Accounts.GetByID(c.Request.Context(), req.AccountID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to look up account", err)
			return
		}
		if account == nil {
			respondError(c, http.StatusNotFound, "account not found", mailerrors.ErrAccountNotFound)
			return
		}

		body := interfaces.OutboundBody{Text: req.Text, HTML: req.HTML}
		if err := h.sender.Forward(c.Request.Context(), account, original, req.Recipients, body); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to forward email", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
