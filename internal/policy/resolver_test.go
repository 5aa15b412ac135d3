package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/mailserver/internal/config"
	"github.com/customeros/mailserver/internal/models"
)

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(i int64) *int64 { return &i }

func TestResolve_GlobalOffOverridesAccountOn(t *testing.T) {
	global := config.ExtractionConfig{ExtractPDF: false}
	account := &models.Account{ExtractPDFOverride: boolPtr(true)}

	view := Resolve(global, account)

	assert.False(t, view.ExtractPDF, "global stronger negative: global=false must win regardless of override")
}

func TestResolve_AccountCanDisableGloballyEnabled(t *testing.T) {
	global := config.ExtractionConfig{ExtractPDF: true}
	account := &models.Account{ExtractPDFOverride: boolPtr(false)}

	view := Resolve(global, account)

	assert.False(t, view.ExtractPDF)
}

func TestResolve_UnsetOverrideInheritsGlobal(t *testing.T) {
	global := config.ExtractionConfig{ExtractPDF: true, ExtractTextual: false}
	account := &models.Account{}

	view := Resolve(global, account)

	assert.True(t, view.ExtractPDF)
	assert.False(t, view.ExtractTextual)
}

func TestResolve_MaxAttachmentSizeTakesSmaller(t *testing.T) {
	global := config.ExtractionConfig{MaxAttachmentSize: 1000}

	smaller := Resolve(global, &models.Account{MaxAttachmentSizeOverride: int64Ptr(500)})
	assert.EqualValues(t, 500, smaller.MaxAttachmentSize)

	larger := Resolve(global, &models.Account{MaxAttachmentSizeOverride: int64Ptr(5000)})
	assert.EqualValues(t, 1000, larger.MaxAttachmentSize)

	unset := Resolve(global, &models.Account{})
	assert.EqualValues(t, 1000, unset.MaxAttachmentSize)
}

func TestFamilyFor(t *testing.T) {
	assert.Equal(t, "pdf", string(FamilyFor("application/pdf")))
	assert.Equal(t, "document", string(FamilyFor("application/msword")))
	assert.Equal(t, "document", string(FamilyFor("application/vnd.openxmlformats-officedocument.wordprocessingml.document")))
	assert.Equal(t, "image_ocr", string(FamilyFor("image/png")))
	assert.Equal(t, "other_textual", string(FamilyFor("text/plain")))
	assert.Equal(t, "other_textual", string(FamilyFor("application/json")))
	assert.Equal(t, "", string(FamilyFor("application/zip")))
}

func TestShouldExtractText(t *testing.T) {
	view := View{ExtractPDF: true, ExtractImageOCR: false}

	assert.True(t, ShouldExtractText(view, "application/pdf"))
	assert.False(t, ShouldExtractText(view, "image/png"))
	assert.False(t, ShouldExtractText(view, "application/zip"))
}
