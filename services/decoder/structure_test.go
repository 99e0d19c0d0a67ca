package decoder

import (
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentsFromStructure(t *testing.T) {
	bs := &imap.BodyStructure{
		MIMEType:    "multipart",
		MIMESubType: "mixed",
		Parts: []*imap.BodyStructure{
			{
				MIMEType:    "multipart",
				MIMESubType: "alternative",
				Parts: []*imap.BodyStructure{
					{MIMEType: "text", MIMESubType: "plain", Size: 10},
					{MIMEType: "text", MIMESubType: "html", Size: 20},
				},
			},
			{
				MIMEType:          "application",
				MIMESubType:       "PDF",
				Disposition:       "attachment",
				DispositionParams: map[string]string{"filename": "report.pdf"},
				Size:              1234,
			},
			{
				MIMEType:    "image",
				MIMESubType: "png",
				Params:      map[string]string{"name": "=?UTF-8?Q?caf=C3=A9.png?="},
				Size:        99,
			},
			{
				MIMEType:    "image",
				MIMESubType: "gif",
				Disposition: "inline",
				Size:        5,
			},
			{
				MIMEType:    "application",
				MIMESubType: "zip",
				Disposition: "attachment",
				Size:        7,
			},
		},
	}

	result := AttachmentsFromStructure(bs)
	require.Len(t, result, 3)

	assert.Equal(t, "report.pdf", result[0].Filename)
	assert.Equal(t, "application/pdf", result[0].ContentType)
	assert.Equal(t, 1234, result[0].Size)

	assert.Equal(t, "café.png", result[1].Filename)
	assert.Equal(t, "image/png", result[1].ContentType)

	assert.Equal(t, "attachment_2", result[2].Filename)
	assert.Equal(t, "application/zip", result[2].ContentType)
}

func TestAttachmentsFromStructure_Nil(t *testing.T) {
	result := AttachmentsFromStructure(nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
