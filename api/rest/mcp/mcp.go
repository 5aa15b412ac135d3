// Package mcp exposes a JSON-RPC-style mirror of the REST surface at
// /llm/mcp (spec §6: "a machine-consumable RPC surface... mirrors these
// operations"). No MCP server implementation exists anywhere in the example
// corpus — only an MCP *client*, in bdobrica-Ruriko's internal/gitai/mcp —
// so this dispatcher is a plain stdlib encoding/json request/response
// router rather than an adopted library; see DESIGN.md.
package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customeros/mailserver/api/rest/handlers"
	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/enum"
	"github.com/customeros/mailserver/interfaces"
	"github.com/customeros/mailserver/services/search"
)

// Request is one JSON-RPC-shaped call: {"method": "...", "params": {...}, "id": ...}.
type Request struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
	ID     any            `json:"id"`
}

// Response mirrors the JSON-RPC 2.0 envelope loosely; no client library in
// the pack exists to align the envelope against, so this stays minimal.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	ID     any    `json:"id,omitempty"`
}

type method func(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error)

var methods = map[string]method{
	"accounts.list":    accountsList,
	"accounts.get":     accountsGet,
	"accounts.process": accountsProcess,
	"emails.list":      emailsList,
	"emails.get":       emailsGet,
	"emails.search":    emailsSearch,
	"emails.send":      emailsSend,
	"emails.reply":     emailsReply,
	"emails.forward":   emailsForward,
}

// Handler builds the /llm/mcp gin handler bound to h.
func Handler(h *handlers.Handlers) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Error: "invalid request: " + err.Error()})
			return
		}

		// A caller that omits "id" still gets one correlation ID per call,
		// echoed in the response the same way a supplied one would be.
		if req.ID == nil {
			req.ID = uuid.New().String()
		}

		fn, ok := methods[req.Method]
		if !ok {
			c.JSON(http.StatusBadRequest, Response{Error: "unknown method: " + req.Method, ID: req.ID})
			return
		}

		result, err := fn(c, h, req.Params)
		if err != nil {
			c.JSON(http.StatusOK, Response{Error: err.Error(), ID: req.ID})
			return
		}
		c.JSON(http.StatusOK, Response{Result: result, ID: req.ID})
	}
}

func accountsList(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	return h.Repos().Accounts.List(c.Request.Context())
}

func accountsGet(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	id, err := uintParam(params, "accountId")
	if err != nil {
		return nil, err
	}
	account, err := h.Repos().Accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, mailerrors.ErrAccountNotFound
	}
	return account, nil
}

func accountsProcess(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	id, err := uintParam(params, "accountId")
	if err != nil {
		return nil, err
	}
	if err := h.Scheduler().TriggerAccount(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return gin.H{"triggered": true}, nil
}

func emailsList(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	skip := intParam(params, "skip", 0)
	limit := intParam(params, "limit", 50)
	if limit > 100 {
		limit = 100
	}
	messages, total, err := h.Repos().Messages.List(c.Request.Context(), skip, limit)
	if err != nil {
		return nil, err
	}
	return gin.H{"emails": messages, "total": total, "skip": skip, "limit": limit}, nil
}

func emailsGet(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	id, err := uintParam(params, "emailId")
	if err != nil {
		return nil, err
	}
	message, err := h.Repos().Messages.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, mailerrors.ErrMessageNotFound
	}
	return message, nil
}

// emailsSearch mirrors handlers.SearchEmails's query-building, reading the
// same field set out of params instead of a gin query string — including
// the HasQuery disambiguation of spec §4.8/§8 scenario 5 (a "query" key
// present-but-empty still fails validation; an absent key bypasses it).
func emailsSearch(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	p := search.Params{
		Field:             enum.MatchedField(stringParam(params, "field", "")),
		Participant:       stringParam(params, "participant", ""),
		FromMe:            boolParam(params, "fromMe"),
		ToMe:              boolParam(params, "toMe"),
		SearchAttachments: boolParam(params, "searchAttachments"),
		SortBy:            enum.SortBy(stringParam(params, "sortBy", string(enum.SortByEmailDate))),
		SortOrder:         enum.SortOrder(stringParam(params, "sortOrder", string(enum.SortOrderDesc))),
		Skip:              intParam(params, "skip", 0),
		Limit:             intParam(params, "limit", 50),
	}
	if v, ok := params["query"]; ok {
		p.HasQuery = true
		p.Query, _ = v.(string)
	}
	if v, ok := params["dateFrom"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.DateFrom = &t
		}
	}
	if v, ok := params["dateTo"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.DateTo = &t
		}
	}
	if v, ok := params["smtpConfigId"]; ok {
		id, err := uintParam(map[string]any{"id": v}, "id")
		if err == nil {
			p.SmtpConfigID = &id
		}
	}
	if v, ok := params["hasAttachments"].(bool); ok {
		p.HasAttachments = &v
	}

	results, err := h.Search().Search(c.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{"message": r.Message, "matchedField": r.MatchedField, "preview": r.Preview})
	}
	return gin.H{"results": out}, nil
}

func emailsSend(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	accountID, err := uintParam(params, "accountId")
	if err != nil {
		return nil, err
	}
	account, err := h.Repos().Accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, mailerrors.ErrAccountNotFound
	}

	msg := &interfaces.OutboundMessage{
		To:      stringSliceParam(params, "to"),
		Cc:      stringSliceParam(params, "cc"),
		Bcc:     stringSliceParam(params, "bcc"),
		Subject: stringParam(params, "subject", ""),
		Body: interfaces.OutboundBody{
			Text: stringParam(params, "text", ""),
			HTML: stringParam(params, "html", ""),
		},
		ReplyTo: stringParam(params, "replyTo", ""),
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("to is required")
	}
	if err := h.Sender().Send(c.Request.Context(), account, msg); err != nil {
		return nil, err
	}
	return gin.H{"sent": true}, nil
}

func emailsReply(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	emailID, err := uintParam(params, "emailId")
	if err != nil {
		return nil, err
	}
	original, err := h.Repos().Messages.GetByID(c.Request.Context(), emailID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, mailerrors.ErrMessageNotFound
	}

	accountID, err := uintParam(params, "accountId")
	if err != nil {
		return nil, err
	}
	account, err := h.Repos().Accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, mailerrors.ErrAccountNotFound
	}

	body := interfaces.OutboundBody{Text: stringParam(params, "text", ""), HTML: stringParam(params, "html", "")}
	if body.Text == "" && body.HTML == "" {
		return nil, fmt.Errorf("please provide a valid html or text body (or both)")
	}
	additional := stringSliceParam(params, "additionalRecipients")
	if err := h.Sender().Reply(c.Request.Context(), account, original, body, additional); err != nil {
		return nil, err
	}
	return gin.H{"sent": true}, nil
}

func emailsForward(c *gin.Context, h *handlers.Handlers, params map[string]any) (any, error) {
	emailID, err := uintParam(params, "emailId")
	if err != nil {
		return nil, err
	}
	original, err := h.Repos().Messages.GetByID(c.Request.Context(), emailID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, mailerrors.ErrMessageNotFound
	}

	accountID, err := uintParam(params, "accountId")
	if err != nil {
		return nil, err
	}
	account, err := h.Repos().Accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, mailerrors.ErrAccountNotFound
	}

	recipients := stringSliceParam(params, "recipients")
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	body := interfaces.OutboundBody{Text: stringParam(params, "text", ""), HTML: stringParam(params, "html", "")}
	if err := h.Sender().Forward(c.Request.Context(), account, original, recipients, body); err != nil {
		return nil, err
	}
	return gin.H{"sent": true}, nil
}

func uintParam(params map[string]any, key string) (uint, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch n := v.(type) {
	case float64:
		return uint(n), nil
	case json.Number:
		i, err := n.Int64()
		return uint(i), err
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func intParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	if n, ok := v.(float64); ok {
		return int(n)
	}
	return def
}

func stringParam(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]any, key string) bool {
	v, _ := params[key].(bool)
	return v
}

func stringSliceParam(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
