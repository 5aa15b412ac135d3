package canonicalize

import (
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/internal/policy"
	"github.com/customeros/mailserver/internal/utils"
)

// buildAttachments implements the attachment processor of spec §4.4. enmime
// has already classified each part into Attachments (has filename or an
// "attachment" disposition) and Inlines (has a content-id); both satisfy the
// spec's "filename present OR Content-Disposition attachment" leg. OtherParts
// is re-scanned for the top-level-MIME-type leg the spec also requires
// (image/audio/video/application parts enmime left unclassified, e.g. an
// inline image without a content-id).
func (p *Pipeline) buildAttachments(env *enmime.Envelope, messageID string, view policy.View) []*models.Attachment {
	var candidates []*enmime.Part
	candidates = append(candidates, env.Attachments...)
	candidates = append(candidates, env.Inlines...)
	for _, part := range env.OtherParts {
		if isQualifyingTopLevelType(part.ContentType) {
			candidates = append(candidates, part)
		}
	}

	var out []*models.Attachment
	for i, part := range candidates {
		if len(part.Content) == 0 {
			p.log.Warnf("empty attachment payload for message %s part %d", messageID, i)
			continue
		}

		filename := resolveFilename(part, messageID, i)
		filename = utils.SanitizeFilename(filename, "unknown")

		contentID := strings.Trim(part.ContentID, "<>")

		attachment := &models.Attachment{
			Filename:    filename,
			ContentType: strings.ToLower(part.ContentType),
			ContentID:   contentID,
			Size:        len(part.Content),
		}

		attachment.ExtractedText = p.extractor.Extract(part.Content, attachment.ContentType, view)

		out = append(out, attachment)
	}
	return out
}

func resolveFilename(part *enmime.Part, messageID string, index int) string {
	if part.FileName != "" {
		return part.FileName
	}
	return fmt.Sprintf("attachment_%s_%d_unknown", messageID, index)
}

func isQualifyingTopLevelType(contentType string) bool {
	top := strings.ToLower(contentType)
	if idx := strings.IndexByte(top, '/'); idx >= 0 {
		top = top[:idx]
	}
	switch top {
	case "image", "audio", "video", "application":
		return true
	default:
		return false
	}
}
