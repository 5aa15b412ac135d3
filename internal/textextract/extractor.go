// Package textextract implements the per-MIME-type text extraction dispatch
// table (spec §4.5). extract(data, mimeType, policy) is total and pure with
// respect to policy: every format branch that does run is recovered locally
// so a single malformed attachment never blocks message ingestion.
package textextract

import (
	"strings"

	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/policy"
)

// decoder turns raw attachment bytes into extracted text. Decoders never
// return an error to the caller — failures are logged and mapped to "".
type decoder func(data []byte) (string, error)

// Extractor dispatches MIME types to format-specific decoders, built once
// at start-up per the re-architecture note in spec §9.
type Extractor struct {
	log      logger.Logger
	decoders map[string]decoder
}

func New(log logger.Logger) *Extractor {
	e := &Extractor{log: log, decoders: make(map[string]decoder)}
	e.register("text/plain", decodeUTF8)
	e.register("text/csv", decodeUTF8)
	e.register("text/xml", decodeUTF8)
	e.register("application/json", decodeUTF8)
	e.register("text/html", decodeHTML)
	e.register("application/xhtml+xml", decodeHTML)
	e.register("application/rtf", decodeRTF)
	e.register("application/pdf", decodePDF)
	e.register("application/msword", decodeWordProcessor)
	e.register("application/vnd.openxmlformats-officedocument.wordprocessingml.document", decodeWordProcessor)
	e.register("application/vnd.oasis.opendocument.text", decodeODT)
	e.register("application/vnd.ms-excel", decodeSpreadsheet)
	e.register("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", decodeSpreadsheet)
	e.register("application/vnd.oasis.opendocument.spreadsheet", decodeSpreadsheet)
	e.register("application/vnd.ms-powerpoint", decodePresentation)
	e.register("application/vnd.openxmlformats-officedocument.presentationml.presentation", decodePresentation)
	return e
}

func (e *Extractor) register(mimeType string, d decoder) {
	e.decoders[mimeType] = d
}

// StripHTML is the bare tag-stripping step used outside attachment
// extraction, e.g. deriving a canonical plain-text body from an HTML-only
// message (spec §4.3 step 5). Errors are swallowed to "".
func StripHTML(html string) string {
	text, err := decodeHTML([]byte(html))
	if err != nil {
		return ""
	}
	return text
}

// Extract returns the extracted text, or nil if the MIME type belongs to no
// extraction family or the policy disables its family (no decoder is invoked
// in either case), or "" if a registered decoder ran but failed or the MIME
// type is in an enabled family but has no decoder.
func (e *Extractor) Extract(data []byte, mimeType string, view policy.View) *string {
	lower := strings.ToLower(strings.TrimSpace(mimeType))

	if !policy.ShouldExtractText(view, lower) {
		return nil
	}

	if strings.HasPrefix(lower, "image/") {
		text, err := decodeImageOCR(data)
		if err != nil {
			e.log.Warnf("ocr decode failed for %s: %v", lower, err)
			text = ""
		}
		return &text
	}

	d, ok := e.decoders[lower]
	if !ok {
		empty := ""
		return &empty
	}

	text, err := safeDecode(d, data)
	if err != nil {
		e.log.Warnf("text extraction failed for %s: %v", lower, err)
		text = ""
	}
	return &text
}

// safeDecode recovers from decoder panics (malformed zip archives etc.) the
// same way a crashed duck-typed decoder in the source would be caught by a
// blanket except clause.
func safeDecode(d decoder, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errUnexpected(r)
		}
	}()
	return d(data)
}

type decodeError struct{ v interface{} }

func (e decodeError) Error() string { return "decoder panic" }

func errUnexpected(r interface{}) error { return decodeError{v: r} }
