package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jaytaylor/html2text"
)

// decodeUTF8 covers text/plain, text/csv, text/xml, application/json: a
// straight UTF-8 decode with replacement of invalid sequences.
func decodeUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// decodeHTML parses HTML and returns visible text with whitespace
// separators, stripped. Grounded on github.com/jaytaylor/html2text, already
// an indirect dependency of the corpus via enmime's body-text fallback.
func decodeHTML(data []byte) (string, error) {
	text, err := html2text.FromString(string(data), html2text.Options{PrettyTables: false})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

var (
	rtfControlWord = regexp.MustCompile(`\\[a-zA-Z]+-?\d*[ ]?`)
	rtfBraces      = regexp.MustCompile(`[{}]`)
)

// decodeRTF is a minimal ASCII-safe RTF stripper: no RTF library exists
// anywhere in the retrieved corpus, so this is a deliberate stdlib branch
// (see DESIGN.md) mirroring the control-word/brace stripping the original
// Python implementation performs.
func decodeRTF(data []byte) (string, error) {
	text := string(data)
	text = strings.ReplaceAll(text, `\par`, "\n")
	text = strings.ReplaceAll(text, `\tab`, "\t")
	text = rtfControlWord.ReplaceAllString(text, "")
	text = rtfBraces.ReplaceAllString(text, "")
	return strings.TrimSpace(text), nil
}

var pdfTextRun = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)

// decodePDF extracts text shown via Tj operators inside BT/ET blocks. No PDF
// parsing library appears anywhere in the corpus; this is a deliberate
// minimal stdlib parser (see DESIGN.md) rather than a fabricated dependency.
// It recovers literal-string show operations found in the raw file bytes
// only: content streams are not decompressed, so text inside compressed
// (e.g. FlateDecode) streams is not recovered, and scanned PDFs yield an
// empty result.
func decodePDF(data []byte) (string, error) {
	var b strings.Builder
	matches := pdfTextRun.FindAllSubmatch(data, -1)
	for _, m := range matches {
		unescaped := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`).Replace(string(m[1]))
		b.WriteString(unescaped)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// decodeWordProcessor handles legacy .doc (application/msword) and modern
// .docx (wordprocessingml.document). Modern DOCX is a zip of XML parts;
// legacy binary .doc has no parser in the corpus and falls back to "".
func decodeWordProcessor(data []byte) (string, error) {
	if !looksLikeZip(data) {
		return "", nil
	}
	return extractOOXMLParagraphs(data, "word/document.xml")
}

// decodeODT unzips the ODF container and joins every <text:p> element's text.
func decodeODT(data []byte) (string, error) {
	content, err := readZipEntry(data, "content.xml")
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var b strings.Builder
	var inParagraph bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return b.String(), nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				inParagraph = false
				b.WriteString("\n")
			}
		case xml.CharData:
			if inParagraph {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// decodeSpreadsheet iterates all sheets/rows of an OOXML or ODF spreadsheet
// and stringifies every non-empty cell. Legacy .xls has no parser in the
// corpus and falls back to "".
func decodeSpreadsheet(data []byte) (string, error) {
	if !looksLikeZip(data) {
		return "", nil
	}
	sharedStrings, _ := sharedStringsTable(data)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "xl/worksheets/") && !strings.HasPrefix(f.Name, "Sheet") && !strings.Contains(f.Name, "content.xml") {
			continue
		}
		if !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, _ := io.ReadAll(rc)
		rc.Close()

		cells := extractCellValues(content, sharedStrings)
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				b.WriteString(c)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// decodePresentation iterates slides/shapes and collects any text run.
// Legacy .ppt has no parser in the corpus and falls back to "".
func decodePresentation(data []byte) (string, error) {
	if !looksLikeZip(data) {
		return "", nil
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, _ := io.ReadAll(rc)
		rc.Close()

		for _, t := range extractDrawingMLText(content) {
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// decodeImageOCR shells out to a system OCR engine, mirroring the Python
// original's use of a system text-recognition engine (pytesseract wraps the
// same `tesseract` binary). No Go OCR binding exists anywhere in the
// corpus; an os/exec call to a real external engine is preferred over
// fabricating a dependency (see DESIGN.md). Absence of the binary degrades
// to an empty result rather than an error.
func decodeImageOCR(data []byte) (string, error) {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		return "", nil
	}

	cmd := exec.Command(path, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(data)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func looksLikeZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K'
}

func readZipEntry(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, io.EOF
}

func extractOOXMLParagraphs(data []byte, partName string) (string, error) {
	content, err := readZipEntry(data, partName)
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var b strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return b.String(), nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func sharedStringsTable(data []byte) ([]string, error) {
	content, err := readZipEntry(data, "xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(bytes.NewReader(content))
	var strs []string
	var cur strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "si" {
				cur.Reset()
			}
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "si" {
				strs = append(strs, cur.String())
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return strs, nil
}

func extractCellValues(sheetXML []byte, sharedStrings []string) []string {
	decoder := xml.NewDecoder(bytes.NewReader(sheetXML))
	var cells []string
	var cur strings.Builder
	var inValue bool
	var isShared bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "c" {
				isShared = false
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" && attr.Value == "s" {
						isShared = true
					}
				}
			}
			if t.Name.Local == "v" || t.Name.Local == "t" || t.Name.Local == "p" {
				inValue = true
				cur.Reset()
			}
		case xml.EndElement:
			if (t.Name.Local == "v" || t.Name.Local == "t" || t.Name.Local == "p") && inValue {
				inValue = false
				val := cur.String()
				if isShared {
					val = resolveSharedString(val, sharedStrings)
				}
				cells = append(cells, val)
			}
		case xml.CharData:
			if inValue {
				cur.Write(t)
			}
		}
	}
	return cells
}

func resolveSharedString(indexStr string, table []string) string {
	idx := 0
	for _, c := range indexStr {
		if c < '0' || c > '9' {
			return indexStr
		}
		idx = idx*10 + int(c-'0')
	}
	if idx < 0 || idx >= len(table) {
		return indexStr
	}
	return table[idx]
}

// extractDrawingMLText collects every <a:t> run within a slide's DrawingML
// shapes, the "any text property" the spec names for presentation MIMEs.
func extractDrawingMLText(slideXML []byte) []string {
	decoder := xml.NewDecoder(bytes.NewReader(slideXML))
	var texts []string
	var cur strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				cur.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				texts = append(texts, cur.String())
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return texts
}
