package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/internal/enum"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
)

const defaultContentType = "application/octet-stream"

type Decoder struct {
	sanitize bool
}

type Option func(*Decoder)

// WithoutSanitizing keeps html bodies as received.
func WithoutSanitizing() Option {
	return func(d *Decoder) {
		d.sanitize = false
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{sanitize: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) DecodeSummary(raw *models.RawSummary) (*models.EmailSummary, error) {
	if raw == nil {
		return nil, errors.Wrap(mailerrors.ErrDecodeFailure, "nil summary")
	}

	headers, err := DecodeHeaders(raw.Header)
	if err != nil {
		return nil, errors.Wrapf(err, "uid %d", raw.UID)
	}

	date := headers.Date
	if date.IsZero() {
		date = raw.InternalDate
	}

	attachments := raw.Attachments
	if attachments == nil {
		attachments = []models.AttachmentMeta{}
	}

	return &models.EmailSummary{
		UID:         raw.UID,
		Subject:     headers.Subject.Display(),
		From:        headers.From.Display(),
		To:          headers.To.Display(),
		Date:        date,
		Flags:       copyFlags(raw.Flags),
		Seen:        hasFlag(raw.Flags, enum.FlagSeen),
		Size:        raw.Size,
		Attachments: attachments,
	}, nil
}

func (d *Decoder) DecodeMessage(raw *models.RawMessage) (*models.EmailDetail, error) {
	if raw == nil || len(raw.Body) == 0 {
		return nil, errors.Wrap(mailerrors.ErrDecodeFailure, "empty message")
	}

	headers, err := DecodeHeaders(raw.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "uid %d", raw.UID)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, errors.Wrapf(mailerrors.ErrDecodeFailure, "uid %d: %s", raw.UID, err.Error())
	}

	date := headers.Date
	if date.IsZero() {
		date = raw.InternalDate
	}

	html := env.HTML
	if d.sanitize {
		html = SanitizeHTML(html)
	}

	size := raw.Size
	if size == 0 {
		size = uint32(len(raw.Body))
	}

	return &models.EmailDetail{
		UID:         raw.UID,
		MessageID:   headers.MessageID,
		Subject:     headers.Subject.Display(),
		From:        headers.From.Display(),
		To:          headers.To.Display(),
		Cc:          headers.Cc.Display(),
		Bcc:         headers.Bcc.Display(),
		Date:        date,
		Flags:       copyFlags(raw.Flags),
		Seen:        hasFlag(raw.Flags, enum.FlagSeen),
		Size:        size,
		Text:        env.Text,
		HTML:        html,
		Attachments: attachmentsFromEnvelope(env),
	}, nil
}

func attachmentsFromEnvelope(env *enmime.Envelope) []models.Attachment {
	result := make([]models.Attachment, 0, len(env.Attachments)+len(env.Inlines))

	add := func(part *enmime.Part, inline bool) {
		index := len(result)
		filename := part.FileName
		if filename == "" {
			filename = fmt.Sprintf("attachment_%d", index)
		}
		contentType := part.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}
		result = append(result, models.Attachment{
			AttachmentMeta: models.AttachmentMeta{
				Filename:    filename,
				ContentType: contentType,
				Size:        len(part.Content),
			},
			ContentID: strings.Trim(part.ContentID, "<>"),
			Inline:    inline,
			Content:   part.Content,
		})
	}

	for _, part := range env.Attachments {
		add(part, false)
	}
	for _, part := range env.Inlines {
		add(part, true)
	}
	return result
}

func hasFlag(flags []string, flag enum.FlagName) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag.String()) {
			return true
		}
	}
	return false
}

func copyFlags(flags []string) []string {
	result := make([]string, len(flags))
	copy(result, flags)
	return result
}
