package models

type OutgoingAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

type OutgoingEmail struct {
	To          []string             `json:"to"`
	Cc          []string             `json:"cc"`
	Bcc         []string             `json:"bcc"`
	Subject     string               `json:"subject"`
	Text        string               `json:"text"`
	HTML        string               `json:"html"`
	InReplyTo   string               `json:"inReplyTo,omitempty"`
	References  []string             `json:"references,omitempty"`
	Attachments []OutgoingAttachment `json:"attachments,omitempty"`
}

func (e *OutgoingEmail) Recipients() []string {
	all := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
	all = append(all, e.To...)
	all = append(all, e.Cc...)
	all = append(all, e.Bcc...)
	return all
}

// Signature is appended to outgoing html. Image, when present, is embedded
// inline and referenced as cid:signature.
type Signature struct {
	HTML             string
	Image            []byte
	ImageContentType string
}

type ComposedMessage struct {
	MessageID  string
	From       string
	Recipients []string
	Raw        []byte
}

type SendResult struct {
	MessageID string `json:"messageId"`
	Response  string `json:"response"`
}
