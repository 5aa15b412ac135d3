// Package search implements the Search Engine of spec §4.8: a filtered,
// optionally regex-matched query over Messages and their Attachments.
//
// No SearchEngine interface is declared in the shared interfaces package —
// doing so would force interfaces to import gorm's query-building concerns
// for no consumer benefit; callers hold a concrete *search.Engine instead.
package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	mailerrors "github.com/customeros/mailserver/internal/errors"
	"github.com/customeros/mailserver/internal/enum"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/interfaces"
)

const (
	maxQueryLen   = 500
	defaultLimit  = 50
	hardcapLimit  = 100
	previewWindow = 200
)

// Params mirrors the filter set named in spec §4.8. HasQuery distinguishes
// an omitted query parameter (bypass: every row is matched_field=metadata,
// the normal "browse all" path) from an explicitly empty one, which spec
// §8 scenario 5 requires to fail validation — see DESIGN.md for this
// disambiguation, which the prose of §4.8 leaves ambiguous on its own.
type Params struct {
	Query             string
	HasQuery          bool
	Field             enum.MatchedField
	DateFrom          *time.Time
	DateTo            *time.Time
	SmtpConfigID      *uint
	HasAttachments    *bool
	Participant       string
	FromMe            bool
	ToMe              bool
	SearchAttachments bool
	SortBy            enum.SortBy
	SortOrder         enum.SortOrder
	Skip              int
	Limit             int
}

// Result is one search hit: the Message (with its Attachments preloaded)
// plus the field-attribution and preview spec §4.8 step 5 requires.
type Result struct {
	Message      *models.Message
	MatchedField enum.MatchedField
	Preview      string
}

type Engine struct {
	db       *gorm.DB
	accounts interfaces.AccountRepository
}

func New(db *gorm.DB, accounts interfaces.AccountRepository) *Engine {
	return &Engine{db: db, accounts: accounts}
}

// Search runs the filter-then-regex pipeline of spec §4.8 and returns
// field-attributed, preview-annotated results, newest-first by default.
func (e *Engine) Search(ctx context.Context, p Params) ([]Result, error) {
	pattern, err := validateQuery(p)
	if err != nil {
		return nil, err
	}

	q := e.db.WithContext(ctx).Model(&models.Message{}).Select("messages.*")
	q, err = e.applyFilters(ctx, q, p)
	if err != nil {
		return nil, err
	}

	joined := false
	if pattern != nil && p.Field == enum.MatchedFieldAttachment {
		q = q.Joins("JOIN attachments ON attachments.message_id = messages.id")
		joined = true
	}

	if pattern != nil {
		q = applyRegexPredicate(q, p, pattern.String())
	}
	if joined {
		q = q.Distinct("messages.*")
	}

	sortCol := sortColumn(p.SortBy)
	order := "desc"
	if p.SortOrder == enum.SortOrderAsc {
		order = "asc"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > hardcapLimit {
		limit = hardcapLimit
	}

	var messages []*models.Message
	if err := q.Preload("Attachments").
		Order(fmt.Sprintf("messages.%s %s", sortCol, order)).
		Offset(p.Skip).Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(messages))
	for _, m := range messages {
		field, preview := attribute(m, p, pattern)
		results = append(results, Result{Message: m, MatchedField: field, Preview: preview})
	}
	return results, nil
}

func (e *Engine) applyFilters(ctx context.Context, q *gorm.DB, p Params) (*gorm.DB, error) {
	if p.DateFrom != nil {
		q = q.Where("messages.email_date >= ?", *p.DateFrom)
	}
	if p.DateTo != nil {
		q = q.Where("messages.email_date <= ?", *p.DateTo)
	}
	if p.SmtpConfigID != nil {
		q = q.Where("messages.account_id = ?", *p.SmtpConfigID)
	}
	if p.HasAttachments != nil {
		if *p.HasAttachments {
			q = q.Where("messages.attachment_count > 0")
		} else {
			q = q.Where("messages.attachment_count = 0")
		}
	}
	if p.Participant != "" {
		like := "%" + p.Participant + "%"
		q = q.Where("messages.sender ILIKE ? OR messages.recipient ILIKE ?", like, like)
	}
	if p.FromMe || p.ToMe {
		if p.SmtpConfigID == nil {
			return q, nil
		}
		account, err := e.accounts.GetByID(ctx, *p.SmtpConfigID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return q, nil
		}
		like := "%" + account.Username + "%"
		if p.FromMe {
			q = q.Where("messages.sender ILIKE ?", like)
		}
		if p.ToMe {
			q = q.Where("messages.recipient ILIKE ?", like)
		}
	}
	return q, nil
}

// validateQuery implements spec §4.8 step 2. Returns (nil, nil) for the
// bypass path (no query provided at all).
func validateQuery(p Params) (*regexp.Regexp, error) {
	if !p.HasQuery {
		return nil, nil
	}
	if p.Query == "" {
		return nil, mailerrors.ErrSearchQueryEmpty
	}
	if len(p.Query) > maxQueryLen {
		return nil, mailerrors.ErrSearchQueryTooLong
	}
	if strings.ContainsRune(p.Query, 0) {
		return nil, mailerrors.ErrSearchQueryHasNull
	}
	re, err := regexp.Compile("(?i)" + p.Query)
	if err != nil {
		return nil, mailerrors.ErrSearchQueryInvalid
	}
	return re, nil
}

// applyRegexPredicate implements spec §4.8 step 3's field dispatch: an
// explicit field narrows to one Postgres ~* predicate; unset ORs across
// sender, subject, plain body, and (if requested) attachment text.
func applyRegexPredicate(q *gorm.DB, p Params, pattern string) *gorm.DB {
	switch p.Field {
	case enum.MatchedFieldSender:
		return q.Where("messages.sender ~* ?", pattern)
	case enum.MatchedFieldSubject:
		return q.Where("messages.subject ~* ?", pattern)
	case enum.MatchedFieldBody:
		return q.Where("messages.body_plain ~* ?", pattern)
	case enum.MatchedFieldAttachment:
		return q.Where("attachments.extracted_text ~* ?", pattern)
	default:
		clause := "messages.sender ~* ? OR messages.subject ~* ? OR messages.body_plain ~* ?"
		args := []interface{}{pattern, pattern, pattern}
		if p.SearchAttachments {
			clause = "messages.id IN (SELECT message_id FROM attachments WHERE extracted_text ~* ?) OR " + clause
			args = append([]interface{}{pattern}, args...)
		}
		return q.Where(clause, args...)
	}
}

func sortColumn(sortBy enum.SortBy) string {
	switch sortBy {
	case enum.SortByProcessedAt:
		return "processed_at"
	case enum.SortBySender:
		return "sender"
	case enum.SortBySubject:
		return "subject"
	default:
		return "email_date"
	}
}

// attribute implements spec §4.8 step 5: re-test the query against each
// field in priority order body→subject→sender→attachment (or respect an
// explicit field), and derive the truncated preview window.
func attribute(m *models.Message, p Params, pattern *regexp.Regexp) (enum.MatchedField, string) {
	if pattern == nil {
		return enum.MatchedFieldMetadata, ""
	}

	if p.Field != "" {
		if p.Field == enum.MatchedFieldAttachment {
			for _, a := range m.Attachments {
				if a.ExtractedText == nil {
					continue
				}
				if loc := pattern.FindStringIndex(*a.ExtractedText); loc != nil {
					return p.Field, preview(*a.ExtractedText, loc)
				}
			}
		}
		text := fieldText(m, p.Field)
		if loc := pattern.FindStringIndex(text); loc != nil {
			return p.Field, preview(text, loc)
		}
		return p.Field, firstChars(m.BodyPlain, previewWindow)
	}

	order := []enum.MatchedField{enum.MatchedFieldBody, enum.MatchedFieldSubject, enum.MatchedFieldSender}
	if p.SearchAttachments {
		order = append(order, enum.MatchedFieldAttachment)
	}
	for _, field := range order {
		text := fieldText(m, field)
		if field == enum.MatchedFieldAttachment {
			for _, a := range m.Attachments {
				if a.ExtractedText == nil {
					continue
				}
				if loc := pattern.FindStringIndex(*a.ExtractedText); loc != nil {
					return field, preview(*a.ExtractedText, loc)
				}
			}
			continue
		}
		if loc := pattern.FindStringIndex(text); loc != nil {
			return field, preview(text, loc)
		}
	}
	return enum.MatchedFieldMetadata, firstChars(m.BodyPlain, previewWindow)
}

func fieldText(m *models.Message, field enum.MatchedField) string {
	switch field {
	case enum.MatchedFieldSender:
		return m.Sender
	case enum.MatchedFieldSubject:
		return m.Subject
	case enum.MatchedFieldBody:
		return m.BodyPlain
	default:
		return ""
	}
}

// preview returns up to previewWindow characters centred on loc, prefixing
// / suffixing "…" when truncated from either side (spec §4.8 step 5).
func preview(text string, loc []int) string {
	start, end := loc[0], loc[1]
	matchLen := end - start
	pad := (previewWindow - matchLen) / 2
	if pad < 0 {
		pad = 0
	}

	windowStart := start - pad
	truncatedLeft := windowStart > 0
	if windowStart < 0 {
		windowStart = 0
	}

	windowEnd := end + pad
	truncatedRight := windowEnd < len(text)
	if windowEnd > len(text) {
		windowEnd = len(text)
	}

	out := text[windowStart:windowEnd]
	if truncatedLeft {
		out = "…" + out
	}
	if truncatedRight {
		out = out + "…"
	}
	return out
}

func firstChars(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "…"
}
