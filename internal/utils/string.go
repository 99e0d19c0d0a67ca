package utils

import (
	"regexp"
	"strings"
)

var replyPrefixRegex = regexp.MustCompile(`(?i)^(Re|Fwd|Fw)(\[\d+\])?:\s*`)

// NormalizeEmailSubject removes prefixes like Re:, Fwd:, etc. from a subject
func NormalizeEmailSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	for replyPrefixRegex.MatchString(subject) {
		subject = replyPrefixRegex.ReplaceAllString(subject, "")
		subject = strings.TrimSpace(subject)
	}
	return subject
}

// ReplySubject prefixes a subject with a single "Re: "
func ReplySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}

// ExtractEmailAddress returns the address of "Name <address>", or the input
// trimmed when there is no angle bracket part.
func ExtractEmailAddress(email string) string {
	email = strings.TrimSpace(email)
	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = strings.TrimSpace(email[startIdx:endIdx])
		}
	}
	return email
}

func ExtractDomainFromEmail(email string) string {
	email = ExtractEmailAddress(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// TextToHTML renders plain text as escaped HTML paragraphs, one <br> per line break
func TextToHTML(text string) string {
	escaped := htmlEscaper.Replace(text)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)
