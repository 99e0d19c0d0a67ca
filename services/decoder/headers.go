package decoder

import (
	"bufio"
	"bytes"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/pkg/errors"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/utils"
)

// Headers is the decoded header block of one message. Address headers are
// tagged values so callers never inspect raw header shapes.
type Headers struct {
	Subject   models.HeaderValue
	From      models.HeaderValue
	To        models.HeaderValue
	Cc        models.HeaderValue
	Bcc       models.HeaderValue
	Date      time.Time
	MessageID string
}

// DecodeHeaders parses an RFC 5322 header block, or a full message whose
// body is ignored.
func DecodeHeaders(raw []byte) (*Headers, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.Wrap(mailerrors.ErrDecodeFailure, "empty header")
	}

	h, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, errors.Wrap(mailerrors.ErrDecodeFailure, err.Error())
	}
	if h.Len() == 0 {
		return nil, errors.Wrap(mailerrors.ErrDecodeFailure, "no header fields")
	}
	mh := mail.Header{Header: message.Header{Header: h}}

	headers := &Headers{
		Subject: models.PlainHeader(decodeText(mh, "Subject")),
		From:    decodeAddresses(mh, "From"),
		To:      decodeAddresses(mh, "To"),
		Cc:      decodeAddresses(mh, "Cc"),
		Bcc:     decodeAddresses(mh, "Bcc"),
	}

	if date, err := mh.Date(); err == nil {
		headers.Date = date
	}
	if id, err := mh.MessageID(); err == nil && id != "" {
		headers.MessageID = "<" + utils.NormalizeMessageID(id) + ">"
	}

	return headers, nil
}

func decodeText(h mail.Header, key string) string {
	text, err := h.Text(key)
	if err != nil {
		return strings.TrimSpace(h.Get(key))
	}
	return strings.TrimSpace(text)
}

// decodeAddresses falls back to the raw header text when the address list
// does not parse.
func decodeAddresses(h mail.Header, key string) models.HeaderValue {
	raw := strings.TrimSpace(h.Get(key))
	if raw == "" {
		return models.PlainHeader("")
	}

	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		return models.PlainHeader(decodeText(h, key))
	}

	values := make([]models.HeaderValue, 0, len(list))
	for _, addr := range list {
		values = append(values, models.AddressedHeader(addr.Name, addr.Address))
	}
	return models.MultipleHeader(values)
}
