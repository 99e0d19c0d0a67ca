package decoder

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap"

	"github.com/customeros/mailadmin/internal/models"
)

// AttachmentsFromStructure walks a BODYSTRUCTURE and returns listing
// metadata for every part that will be offered as an attachment.
func AttachmentsFromStructure(bs *imap.BodyStructure) []models.AttachmentMeta {
	result := []models.AttachmentMeta{}
	if bs == nil {
		return result
	}
	return appendAttachments(result, bs)
}

func appendAttachments(result []models.AttachmentMeta, bs *imap.BodyStructure) []models.AttachmentMeta {
	if len(bs.Parts) > 0 {
		for _, part := range bs.Parts {
			result = appendAttachments(result, part)
		}
		return result
	}

	filename := structureFilename(bs)
	disposition := strings.ToLower(bs.Disposition)
	mimeType := strings.ToLower(bs.MIMEType)

	switch {
	case disposition == "attachment":
	case disposition == "inline" && filename != "":
	case disposition == "" && filename != "" && mimeType != "text" && mimeType != "multipart":
	default:
		return result
	}

	if filename == "" {
		filename = fmt.Sprintf("attachment_%d", len(result))
	}
	contentType := defaultContentType
	if bs.MIMEType != "" && bs.MIMESubType != "" {
		contentType = strings.ToLower(bs.MIMEType + "/" + bs.MIMESubType)
	}

	return append(result, models.AttachmentMeta{
		Filename:    filename,
		ContentType: contentType,
		Size:        int(bs.Size),
	})
}

func structureFilename(bs *imap.BodyStructure) string {
	if name, ok := bs.DispositionParams["filename"]; ok && name != "" {
		return decodeParam(name)
	}
	if name, ok := bs.Params["name"]; ok && name != "" {
		return decodeParam(name)
	}
	return ""
}

// decodeParam decodes RFC 2047 encoded words some clients put in parameters.
func decodeParam(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
