package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/enum"
	"github.com/customeros/mailserver/services/search"
)

// SearchEmails handles GET /emails/search (spec §4.8, §6).
func (h *Handlers) SearchEmails() gin.HandlerFunc {
	return func(c *gin.Context) {
		params := buildSearchParams(c)

		results, err := h.search.Search(c.Request.Context(), params)
		if err != nil {
			status := http.StatusInternalServerError
			if isValidationError(err) {
				status = http.StatusBadRequest
			}
			respondError(c, status, "search failed", err)
			return
		}

		out := make([]gin.H, 0, len(results))
		for _, r := range results {
			out = append(out, gin.H{
				"message":      r.Message,
				"matchedField": r.MatchedField,
				"preview":      r.Preview,
			})
		}
		c.JSON(http.StatusOK, gin.H{"results": out})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, mailerrors.ErrSearchQueryEmpty) ||
		errors.Is(err, mailerrors.ErrSearchQueryTooLong) ||
		errors.Is(err, mailerrors.ErrSearchQueryHasNull) ||
		errors.Is(err, mailerrors.ErrSearchQueryInvalid)
}

func buildSearchParams(c *gin.Context) search.Params {
	query, hasQuery := c.GetQuery("query")

	p := search.Params{
		Query:             query,
		HasQuery:          hasQuery,
		Field:             enum.MatchedField(c.Query("field")),
		Participant:       c.Query("participant"),
		FromMe:            c.Query("from_me") == "true",
		ToMe:              c.Query("to_me") == "true",
		SearchAttachments: c.Query("search_attachments") == "true",
		SortBy:            enum.SortBy(c.DefaultQuery("sort_by", string(enum.SortByEmailDate))),
		SortOrder:         enum.SortOrder(c.DefaultQuery("sort_order", string(enum.SortOrderDesc))),
		Skip:              intQuery(c, "skip", 0),
		Limit:             intQuery(c, "limit", 50),
	}

	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.DateTo = &t
		}
	}
	if v := c.Query("smtp_config_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			u := uint(id)
			p.SmtpConfigID = &u
		}
	}
	if v := c.Query("has_attachments"); v != "" {
		b := v == "true"
		p.HasAttachments = &b
	}
	return p
}
