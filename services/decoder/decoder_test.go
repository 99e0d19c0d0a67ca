package decoder

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

var multipartMessage = crlf(`From: "Ann Example" <ann@example.com>
To: bob@example.com, Carol <carol@example.com>
Cc: dave@example.com
Subject: =?UTF-8?Q?Quarterly_r=C3=A9sum=C3=A9?=
Date: Tue, 30 Apr 2024 09:15:00 +0000
Message-ID: <abc123@example.com>
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset=utf-8

Hello text
--inner
Content-Type: text/html; charset=utf-8

<p onclick="steal()">Hello <b>html</b></p><script>alert(1)</script>
--inner--
--outer
Content-Type: application/pdf; name="report.pdf"
Content-Disposition: attachment; filename="report.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQK
--outer--
`)

func TestDecodeHeaders(t *testing.T) {
	headers, err := DecodeHeaders(multipartMessage)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly résumé", headers.Subject.Display())
	assert.Equal(t, models.HeaderAddressed, headers.From.Kind)
	assert.Equal(t, "Ann Example", headers.From.Name)
	assert.Equal(t, "ann@example.com", headers.From.Address)
	assert.Equal(t, models.HeaderMultiple, headers.To.Kind)
	assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, headers.To.Addresses())
	assert.Equal(t, "dave@example.com", headers.Cc.Display())
	assert.Equal(t, "", headers.Bcc.Display())
	assert.Equal(t, "<abc123@example.com>", headers.MessageID)
	assert.True(t, headers.Date.Equal(time.Date(2024, 4, 30, 9, 15, 0, 0, time.UTC)))
}

func TestDecodeHeaders_UnparseableAddressFallsBackToPlain(t *testing.T) {
	headers, err := DecodeHeaders(crlf("From: undisclosed recipients\nSubject: hi\n\n"))
	require.NoError(t, err)

	assert.Equal(t, models.HeaderPlain, headers.From.Kind)
	assert.Equal(t, "undisclosed recipients", headers.From.Display())
}

func TestDecodeHeaders_Failures(t *testing.T) {
	_, err := DecodeHeaders(nil)
	assert.ErrorIs(t, err, mailerrors.ErrDecodeFailure)

	_, err = DecodeHeaders([]byte("this line has no colon\r\n\r\n"))
	assert.ErrorIs(t, err, mailerrors.ErrDecodeFailure)
}

func TestDecoder_DecodeSummary(t *testing.T) {
	internal := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	raw := &models.RawSummary{
		UID:          42,
		Flags:        []string{`\Seen`, `\Answered`},
		Size:         2048,
		InternalDate: internal,
		Header:       crlf("From: ann@example.com\nTo: bob@example.com\nSubject: No date here\n\n"),
		Attachments:  []models.AttachmentMeta{{Filename: "a.txt", ContentType: "text/plain", Size: 3}},
	}

	summary, err := NewDecoder().DecodeSummary(raw)
	require.NoError(t, err)

	assert.Equal(t, uint32(42), summary.UID)
	assert.Equal(t, "No date here", summary.Subject)
	assert.Equal(t, "ann@example.com", summary.From)
	assert.Equal(t, "bob@example.com", summary.To)
	assert.Equal(t, internal, summary.Date, "falls back to the internal date")
	assert.True(t, summary.Seen)
	assert.Equal(t, uint32(2048), summary.Size)
	assert.Len(t, summary.Attachments, 1)
	assert.Nil(t, summary.Detail)
}

func TestDecoder_DecodeSummaryUnseen(t *testing.T) {
	summary, err := NewDecoder().DecodeSummary(&models.RawSummary{
		UID:    1,
		Header: crlf("Subject: fresh\n\n"),
	})
	require.NoError(t, err)
	assert.False(t, summary.Seen)
	assert.NotNil(t, summary.Attachments)
}

func TestDecoder_DecodeSummaryBrokenHeader(t *testing.T) {
	_, err := NewDecoder().DecodeSummary(&models.RawSummary{UID: 5, Header: []byte("garbage\r\n\r\n")})
	assert.ErrorIs(t, err, mailerrors.ErrDecodeFailure)
}

func TestDecoder_DecodeMessage(t *testing.T) {
	detail, err := NewDecoder().DecodeMessage(&models.RawMessage{
		UID:   7,
		Flags: []string{`\Seen`},
		Body:  multipartMessage,
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(7), detail.UID)
	assert.Equal(t, "Quarterly résumé", detail.Subject)
	assert.Equal(t, "Ann Example <ann@example.com>", detail.From)
	assert.Equal(t, "bob@example.com, Carol <carol@example.com>", detail.To)
	assert.Equal(t, "dave@example.com", detail.Cc)
	assert.Contains(t, detail.Text, "Hello text")
	assert.Contains(t, detail.HTML, "<b>html</b>")
	assert.NotContains(t, detail.HTML, "onclick")
	assert.NotContains(t, detail.HTML, "<script>")
	assert.True(t, detail.Seen)
	assert.Equal(t, uint32(len(multipartMessage)), detail.Size)

	require.Len(t, detail.Attachments, 1)
	att := detail.Attachments[0]
	assert.Equal(t, "report.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, []byte("%PDF-1.4\n"), att.Content)
	assert.Equal(t, len(att.Content), att.Size)
}

func TestDecoder_DecodeMessageWithoutSanitizing(t *testing.T) {
	detail, err := NewDecoder(WithoutSanitizing()).DecodeMessage(&models.RawMessage{UID: 7, Body: multipartMessage})
	require.NoError(t, err)
	assert.Contains(t, detail.HTML, "<script>")
}

func TestDecoder_DecodeMessageEmpty(t *testing.T) {
	_, err := NewDecoder().DecodeMessage(&models.RawMessage{UID: 1})
	assert.ErrorIs(t, err, mailerrors.ErrDecodeFailure)
}

func TestSanitizeHTML(t *testing.T) {
	assert.Equal(t, "", SanitizeHTML("   "))
	assert.Equal(t, `<a>click</a>`, SanitizeHTML(`<a href="javascript:alert(1)">click</a>`))
	assert.Equal(t, `<img src="cid:logo"/>`, SanitizeHTML(`<img src="cid:logo" onerror="x()">`))

	full := SanitizeHTML(`<html><head><script>x</script></head><body><p>hi</p></body></html>`)
	assert.True(t, strings.HasPrefix(full, "<html>"))
	assert.Contains(t, full, "<p>hi</p>")
	assert.NotContains(t, full, "script")
}
