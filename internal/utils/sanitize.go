package utils

import (
	"regexp"
	"strings"
)

var (
	quotedPrintableArtefacts = regexp.MustCompile(`=\?[^?]+\?[BQbq]\?[^?]*\?=`)
	filesystemHostileChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	repeatedUnderscores      = regexp.MustCompile(`_+`)
)

// SanitizeFilename implements spec §4.4 step 1: strip quoted-printable
// encoded-word artefacts, replace spaces with underscores, remove a
// conservative set of filesystem-hostile characters, collapse repeated
// underscores, trim to <=100 chars, and substitute a fallback when the
// result is empty.
func SanitizeFilename(filename, fallback string) string {
	name := quotedPrintableArtefacts.ReplaceAllString(filename, "")
	name = strings.ReplaceAll(name, " ", "_")
	name = filesystemHostileChars.ReplaceAllString(name, "")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")

	if len(name) > 100 {
		name = name[:100]
	}

	if name == "" {
		if fallback != "" {
			return fallback
		}
		return "unknown"
	}
	return name
}
