package textextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/policy"
)

func allEnabledPolicy() policy.View {
	return policy.View{
		ExtractPDF:      true,
		ExtractDocument: true,
		ExtractImageOCR: true,
		ExtractTextual:  true,
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := New(logger.New(logger.Config{}))
	text := e.Extract([]byte("hello world"), "text/plain", allEnabledPolicy())
	require.NotNil(t, text)
	assert.Equal(t, "hello world", *text)
}

func TestExtract_HTML(t *testing.T) {
	e := New(logger.New(logger.Config{}))
	text := e.Extract([]byte("<p>hello <b>world</b></p>"), "text/html", allEnabledPolicy())
	require.NotNil(t, text)
	assert.Contains(t, *text, "hello")
	assert.Contains(t, *text, "world")
}

func TestExtract_PolicyDisabled_ReturnsNil(t *testing.T) {
	e := New(logger.New(logger.Config{}))
	view := policy.View{ExtractPDF: false}
	text := e.Extract([]byte("%PDF-1.4 ..."), "application/pdf", view)
	assert.Nil(t, text, "disabled family must return none without invoking the decoder")
}

func TestExtract_UnknownMIME_ReturnsNil(t *testing.T) {
	e := New(logger.New(logger.Config{}))
	text := e.Extract([]byte{0x01, 0x02}, "application/octet-stream", allEnabledPolicy())
	assert.False(t, policy.ShouldExtractText(allEnabledPolicy(), "application/octet-stream"))
	assert.Nil(t, text, "a MIME type outside every extraction family returns none")
}

func TestExtract_RTF(t *testing.T) {
	e := New(logger.New(logger.Config{}))
	text := e.Extract([]byte(`{\rtf1 hello\parworld}`), "application/rtf", allEnabledPolicy())
	require.NotNil(t, text)
	assert.Contains(t, *text, "hello")
	assert.Contains(t, *text, "world")
}
