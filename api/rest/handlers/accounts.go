package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	custom_err "github.com/customeros/mailserver/api/errors"
	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/services/outbound"
)

// ListAccounts handles GET /smtp-configs.
func (h *Handlers) ListAccounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.repos.Accounts.List(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to list accounts", err)
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

// CreateAccount handles POST /smtp-configs.
func (h *Handlers) CreateAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var account models.Account
		if err := c.ShouldBindJSON(&account); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}

		if err := h.repos.Accounts.Create(c.Request.Context(), &account); err != nil {
			if errors.Is(err, mailerrors.ErrAccountNameExists) {
				respondError(c, http.StatusUnprocessableEntity, "account name already exists", err)
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to create account", err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// GetAccount handles GET /smtp-configs/{id}.
func (h *Handlers) GetAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.resolveAccount(c)
		if err != nil {
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// UpdateAccount handles PUT /smtp-configs/{id} — a partial field update.
func (h *Handlers) UpdateAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.resolveAccount(c)
		if err != nil {
			return
		}

		var patch map[string]interface{}
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
		applyAccountPatch(account, patch)

		if err := h.repos.Accounts.Update(c.Request.Context(), account); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to update account", err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// DeleteAccount handles DELETE /smtp-configs/{id}.
func (h *Handlers) DeleteAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := h.repos.Accounts.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, mailerrors.ErrAccountHasMessages) {
				respondError(c, http.StatusConflict, "account has messages and cannot be deleted", err)
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to delete account", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// TestConnection handles GET /smtp-configs/{id}/test-connection: round-trips
// an IMAP login and, if SMTP is configured, an EHLO/STARTTLS probe, per
// SPEC_FULL.md §3.
func (h *Handlers) TestConnection() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := h.resolveAccount(c)
		if err != nil {
			return
		}

		result := gin.H{"imap": "ok", "smtp": "ok"}
		if err := testIMAPLogin(h.log, account); err != nil {
			result["imap"] = err.Error()
		}
		if err := outbound.TestConnection(account); err != nil {
			result["smtp"] = err.Error()
		}
		c.JSON(http.StatusOK, result)
	}
}

// Process handles POST /smtp-configs/{id}/process: an immediate one-shot
// poll of this account (spec §4.1 manual trigger).
func (h *Handlers) Process() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := h.scheduler.TriggerAccount(c.Request.Context(), id); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to process account", err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func (h *Handlers) resolveAccount(c *gin.Context) (*models.Account, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, errNotFound
	}
	account, err := h.repos.Accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to look up account", err)
		return nil, err
	}
	if account == nil {
		respondError(c, http.StatusNotFound, "account not found", mailerrors.ErrAccountNotFound)
		return nil, errNotFound
	}
	return account, nil
}

var errNotFound = errors.New("not found")

func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return uint(id), true
}

func respondError(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func respondValidation(c *gin.Context, errs *custom_err.MultiErrors) {
	c.JSON(http.StatusBadRequest, errs)
}

// applyAccountPatch copies the subset of fields a PUT request supplied onto
// account, matching the "partial update" contract of spec §6's table.
func applyAccountPatch(account *models.Account, patch map[string]interface{}) {
	if v, ok := patch["accountName"].(string); ok {
		account.AccountName = v
	}
	if v, ok := patch["imapHost"].(string); ok {
		account.ImapHost = v
	}
	if v, ok := patch["imapPort"].(float64); ok {
		account.ImapPort = int(v)
	}
	if v, ok := patch["imapUseSsl"].(bool); ok {
		account.ImapUseSSL = v
	}
	if v, ok := patch["imapUseTls"].(bool); ok {
		account.ImapUseTLS = v
	}
	if v, ok := patch["smtpHost"].(string); ok {
		account.SmtpHost = v
	}
	if v, ok := patch["smtpPort"].(float64); ok {
		account.SmtpPort = int(v)
	}
	if v, ok := patch["smtpUseSsl"].(bool); ok {
		account.SmtpUseSSL = v
	}
	if v, ok := patch["smtpUseTls"].(bool); ok {
		account.SmtpUseTLS = v
	}
	if v, ok := patch["username"].(string); ok {
		account.Username = v
	}
	if v, ok := patch["password"].(string); ok && v != "" {
		account.Password = v
	}
	if v, ok := patch["enabled"].(bool); ok {
		account.Enabled = v
	}
}
