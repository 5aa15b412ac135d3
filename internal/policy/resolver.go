// Package policy implements the "global stronger negative" merge between
// global extraction defaults and an Account's per-field overrides (spec §4.2).
package policy

import (
	"strings"

	"github.com/customeros/mailserver/internal/config"
	"github.com/customeros/mailserver/internal/enum"
	"github.com/customeros/mailserver/internal/models"
)

// View is the ephemeral, value-type merge of global settings and one
// Account's overrides. Never persisted.
type View struct {
	StoreTextOnly       bool
	MaxAttachmentSize   int64
	ExtractPDF          bool
	ExtractDocument     bool
	ExtractImageOCR     bool
	ExtractTextual      bool
}

// Resolve merges global and account-level policy. For every boolean flag,
// effective = global AND accountOverride, where accountOverride defaults to
// global when unset — a feature disabled globally can never be re-enabled
// by an account, but an account may always disable what is globally enabled.
// For the size limit, effective = min(global, override), override defaults
// to global when unset — the smaller limit always wins.
func Resolve(global config.ExtractionConfig, account *models.Account) View {
	return View{
		StoreTextOnly:     resolveBool(global.StoreTextOnly, account.StoreTextOnlyOverride),
		MaxAttachmentSize: resolveMax(global.MaxAttachmentSize, account.MaxAttachmentSizeOverride),
		ExtractPDF:        resolveBool(global.ExtractPDF, account.ExtractPDFOverride),
		ExtractDocument:   resolveBool(global.ExtractDocument, account.ExtractDocumentOverride),
		ExtractImageOCR:   resolveBool(global.ExtractImageOCR, account.ExtractImageOCROverride),
		ExtractTextual:    resolveBool(global.ExtractTextual, account.ExtractTextualOverride),
	}
}

func resolveBool(global bool, override *bool) bool {
	effectiveOverride := global
	if override != nil {
		effectiveOverride = *override
	}
	return global && effectiveOverride
}

func resolveMax(global int64, override *int64) int64 {
	effectiveOverride := global
	if override != nil {
		effectiveOverride = *override
	}
	if effectiveOverride < global {
		return effectiveOverride
	}
	return global
}

// FamilyFor classifies a MIME type into one of the four extractable
// families dispatched on by ShouldExtractText, per spec §4.2's table.
func FamilyFor(mimeType string) enum.ExtractFamily {
	m := strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case m == "application/pdf":
		return enum.ExtractFamilyPDF
	case m == "application/msword",
		strings.HasSuffix(m, "wordprocessingml.document"):
		return enum.ExtractFamilyDocument
	case strings.HasPrefix(m, "image/"):
		return enum.ExtractFamilyImageOCR
	case strings.HasPrefix(m, "text/"),
		m == "application/json",
		m == "application/xml",
		m == "application/csv",
		m == "application/rtf":
		return enum.ExtractFamilyTextual
	default:
		return enum.ExtractFamilyNone
	}
}

// ShouldExtractText selects the per-family flag for mimeType. Unrecognized
// MIME types never extract.
func ShouldExtractText(view View, mimeType string) bool {
	switch FamilyFor(mimeType) {
	case enum.ExtractFamilyPDF:
		return view.ExtractPDF
	case enum.ExtractFamilyDocument:
		return view.ExtractDocument
	case enum.ExtractFamilyImageOCR:
		return view.ExtractImageOCR
	case enum.ExtractFamilyTextual:
		return view.ExtractTextual
	default:
		return false
	}
}
