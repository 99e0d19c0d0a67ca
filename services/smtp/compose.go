package smtp

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/utils"
)

const (
	SignatureContentID = "signature"
	DraftNoSubject     = "(no subject)"
)

// Composer renders outgoing mail as RFC 5322 messages.
type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// Compose builds a message for submission. Bcc recipients are part of the
// envelope only.
func (c *Composer) Compose(from string, email *models.OutgoingEmail, signature *models.Signature) (*models.ComposedMessage, error) {
	if email == nil {
		return nil, errors.Wrap(mailerrors.ErrInvalidRequest, "email cannot be nil")
	}
	domain, err := validateAddresses(from, email)
	if err != nil {
		return nil, err
	}

	messageID := utils.GenerateMessageID(domain, from+email.Subject)
	raw, err := c.render(from, messageID, email, signature, false)
	if err != nil {
		return nil, err
	}

	return &models.ComposedMessage{
		MessageID:  messageID,
		From:       from,
		Recipients: utils.UniqueStrings(email.Recipients()),
		Raw:        raw,
	}, nil
}

// ComposeDraft builds a message for the drafts folder. Every field is
// optional and Bcc is kept in the header.
func (c *Composer) ComposeDraft(from string, draft *models.OutgoingEmail) (*models.ComposedMessage, error) {
	if draft == nil {
		draft = &models.OutgoingEmail{}
	}
	domain, err := validateAddresses(from, draft)
	if err != nil {
		return nil, err
	}

	withSubject := *draft
	if strings.TrimSpace(withSubject.Subject) == "" {
		withSubject.Subject = DraftNoSubject
	}

	messageID := utils.GenerateMessageID(domain, "draft")
	raw, err := c.render(from, messageID, &withSubject, nil, true)
	if err != nil {
		return nil, err
	}
	return &models.ComposedMessage{
		MessageID:  messageID,
		From:       from,
		Recipients: utils.UniqueStrings(draft.Recipients()),
		Raw:        raw,
	}, nil
}

func validateAddresses(from string, email *models.OutgoingEmail) (string, error) {
	validation := mailvalidate.ValidateEmailSyntax(from)
	if !validation.IsValid {
		return "", errors.Wrapf(mailerrors.ErrInvalidRequest, "from address %q is not valid", from)
	}
	for _, recipient := range email.Recipients() {
		if !mailvalidate.ValidateEmailSyntax(recipient).IsValid {
			return "", errors.Wrapf(mailerrors.ErrInvalidRequest, "recipient %q is not valid", recipient)
		}
	}
	return validation.Domain, nil
}

func (c *Composer) render(from, messageID string, email *models.OutgoingEmail, signature *models.Signature, keepBcc bool) ([]byte, error) {
	var h mail.Header
	h.Set("MIME-Version", "1.0")
	h.SetDate(c.now())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	if len(email.To) > 0 {
		h.SetAddressList("To", toAddresses(email.To))
	}
	if len(email.Cc) > 0 {
		h.SetAddressList("Cc", toAddresses(email.Cc))
	}
	if keepBcc && len(email.Bcc) > 0 {
		h.SetAddressList("Bcc", toAddresses(email.Bcc))
	}
	h.SetSubject(email.Subject)
	h.SetMessageID(utils.NormalizeMessageID(messageID))
	if email.InReplyTo != "" {
		h.SetMsgIDList("In-Reply-To", []string{utils.NormalizeMessageID(email.InReplyTo)})
	}
	if len(email.References) > 0 {
		refs := make([]string, 0, len(email.References))
		for _, ref := range email.References {
			if ref = utils.NormalizeMessageID(ref); ref != "" {
				refs = append(refs, ref)
			}
		}
		h.SetMsgIDList("References", refs)
	}

	text, html := bodies(email)
	if signature != nil && signature.HTML != "" {
		html += signature.HTML
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create message writer")
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create inline writer")
	}
	if err = writeInlinePart(iw, "text/plain", text); err != nil {
		return nil, err
	}
	if err = writeInlinePart(iw, "text/html", html); err != nil {
		return nil, err
	}
	if err = iw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close inline writer")
	}

	if signature != nil && len(signature.Image) > 0 {
		contentType := signature.ImageContentType
		if contentType == "" {
			contentType = "image/png"
		}
		filename := "signature." + utils.GetFileExtensionFromContentType(contentType)
		if err = writeAttachment(mw, filename, contentType, signature.Image, SignatureContentID); err != nil {
			return nil, err
		}
	}

	for _, attachment := range email.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err = writeAttachment(mw, attachment.Filename, contentType, attachment.Content, ""); err != nil {
			return nil, err
		}
	}

	if err = mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close message writer")
	}
	return buf.Bytes(), nil
}

// bodies fills whichever of the text and html bodies is missing from the
// other one.
func bodies(email *models.OutgoingEmail) (string, string) {
	text, html := email.Text, email.HTML
	if strings.TrimSpace(html) == "" {
		html = utils.TextToHTML(text)
	}
	if strings.TrimSpace(text) == "" && html != "" {
		text = htmlToText(html)
	}
	return text, html
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("script,style").Remove()
	return strings.TrimSpace(doc.Text())
}

func writeInlinePart(iw *mail.InlineWriter, contentType, body string) error {
	var th mail.InlineHeader
	th.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	th.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := iw.CreatePart(th)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s part", contentType)
	}
	if _, err = io.WriteString(w, body); err != nil {
		return errors.Wrapf(err, "failed to write %s part", contentType)
	}
	return w.Close()
}

func writeAttachment(mw *mail.Writer, filename, contentType string, content []byte, contentID string) error {
	var ah mail.AttachmentHeader
	ah.SetContentType(contentType, nil)
	ah.Set("Content-Transfer-Encoding", "base64")
	if contentID != "" {
		ah.SetContentDisposition("inline", map[string]string{"filename": filename})
		ah.Set("Content-ID", "<"+contentID+">")
	} else {
		ah.SetFilename(filename)
	}

	w, err := mw.CreateAttachment(ah)
	if err != nil {
		return errors.Wrapf(err, "failed to create attachment %s", filename)
	}
	if _, err = w.Write(content); err != nil {
		return errors.Wrapf(err, "failed to write attachment %s", filename)
	}
	return w.Close()
}

func toAddresses(addrs []string) []*mail.Address {
	result := make([]*mail.Address, 0, len(addrs))
	for _, addr := range addrs {
		result = append(result, &mail.Address{Address: strings.TrimSpace(addr)})
	}
	return result
}
