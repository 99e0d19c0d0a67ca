package profile

import (
	"html"
	"strings"

	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/services/smtp"
)

// SignatureHTML renders the signature block for a profile. A profile with a
// signature image references it by content id; otherwise the profile fields
// are rendered as text. Disabled or empty signatures render as "".
func SignatureHTML(profile *models.Profile) string {
	if profile == nil || !profile.SignatureEnabled {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div style="margin-top: 20px; padding-top: 20px; border-top: 1px solid #e0e0e0;">`)

	if profile.SignatureImage != "" {
		b.WriteString(`<img src="cid:` + smtp.SignatureContentID + `" alt="Signature" style="max-width: 400px; height: auto;" />`)
		b.WriteString(`</div>`)
		return b.String()
	}

	var lines []string
	if name := strings.TrimSpace(profile.Name); name != "" {
		lines = append(lines, `<div style="font-weight: bold; color: #333; margin-bottom: 5px;">`+html.EscapeString(name)+`</div>`)
	}
	if position := strings.TrimSpace(profile.Position); position != "" {
		lines = append(lines, `<div style="margin-bottom: 2px;">`+html.EscapeString(position)+`</div>`)
	}
	if company := strings.TrimSpace(profile.Company); company != "" {
		lines = append(lines, `<div style="margin-bottom: 2px;">`+html.EscapeString(company)+`</div>`)
	}
	if phone := strings.TrimSpace(profile.Phone); phone != "" {
		lines = append(lines, `<div style="margin-bottom: 2px;">Tel: `+html.EscapeString(phone)+`</div>`)
	}
	if website := strings.TrimSpace(profile.Website); website != "" {
		lines = append(lines, `<div><a href="`+html.EscapeString(websiteURL(website))+`" style="color: #0066cc;">`+html.EscapeString(website)+`</a></div>`)
	}
	if len(lines) == 0 {
		return ""
	}

	b.WriteString(`<div style="font-family: Arial, sans-serif; font-size: 12px; color: #666;">`)
	for _, line := range lines {
		b.WriteString(line)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func websiteURL(website string) string {
	lower := strings.ToLower(website)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return website
	}
	return "https://" + website
}
