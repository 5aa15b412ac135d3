package outbound

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"time"

	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/internal/utils"
	"github.com/customeros/mailserver/interfaces"
)

// buildHeaders assembles the RFC 822 header set of spec §4.7: From plus the
// optional Cc/Reply-To/In-Reply-To/References headers. Bcc is deliberately
// excluded — it is part of the RCPT list only.
func buildHeaders(account *models.Account, from string, msg *interfaces.OutboundMessage) map[string]string {
	headers := map[string]string{
		"From":         from,
		"To":           joinAddresses(msg.To),
		"Subject":      msg.Subject,
		"Date":         time.Now().UTC().Format(time.RFC1123Z),
		"MIME-Version": "1.0",
		"Message-Id":   utils.GenerateMessageID(account.ImapHost, "outbound"),
	}
	if len(msg.Cc) > 0 {
		headers["Cc"] = joinAddresses(msg.Cc)
	}
	if msg.ReplyTo != "" {
		headers["Reply-To"] = msg.ReplyTo
	}
	if msg.InReplyTo != "" {
		headers["In-Reply-To"] = "<" + msg.InReplyTo + ">"
	}
	if msg.References != "" {
		headers["References"] = "<" + msg.References + ">"
	}
	return headers
}

func joinAddresses(addrs []string) string {
	out := ""
	for i, a := range addrs {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// compose builds the wire-format message: MIME multipart/mixed wrapping a
// multipart/alternative of plain+HTML, plus base64 attachment parts (spec
// §4.7), grounded on the teacher's buildMultipartMessageWithStructure.
func compose(headers map[string]string, msg *interfaces.OutboundMessage) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)

	altBuf := new(bytes.Buffer)
	altWriter := multipart.NewWriter(altBuf)
	if msg.Body.Text != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(msg.Body.Text)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if msg.Body.HTML != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(msg.Body.HTML)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	mixedWriter := multipart.NewWriter(buf)
	headers["Content-Type"] = fmt.Sprintf("multipart/mixed; boundary=%s", mixedWriter.Boundary())
	writeHeaders(headers, buf)

	altPart, err := mixedWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%s", altWriter.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		if err := addAttachment(mixedWriter, att); err != nil {
			return nil, err
		}
	}

	if err := mixedWriter.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func addAttachment(writer *multipart.Writer, att interfaces.OutboundAttachment) error {
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename)},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(att.Data)
	_, err = part.Write([]byte(encoded))
	return err
}

func writeHeaders(headers map[string]string, buf *bytes.Buffer) {
	for k, v := range headers {
		buf.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buf.WriteString("\r\n")
}
