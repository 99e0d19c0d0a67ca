package dto

// Credentials travel in every mailbox request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ListFolderRequest struct {
	Credentials
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

type MoveRequest struct {
	Credentials
	Uid          uint32 `json:"uid"`
	SourceFolder string `json:"sourceFolder"`
	TargetFolder string `json:"targetFolder"`
}

type AttachmentRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	// Content is base64 encoded
	Content string `json:"content"`
}

// SendRequest is shared by send and save-draft. Recipient fields accept
// either a list or a comma separated string.
type SendRequest struct {
	Credentials
	To          Recipients          `json:"to"`
	Cc          Recipients          `json:"cc"`
	Bcc         Recipients          `json:"bcc"`
	Subject     string              `json:"subject"`
	Text        string              `json:"text"`
	HTML        string              `json:"html"`
	Attachments []AttachmentRequest `json:"attachments"`
}

type ReplyOriginal struct {
	From       string   `json:"from"`
	Subject    string   `json:"subject"`
	MessageId  string   `json:"messageId"`
	References []string `json:"references"`
}

type ReplyRequest struct {
	Credentials
	OriginalEmail ReplyOriginal `json:"originalEmail"`
	ReplyText     string        `json:"replyText"`
}

type ProfileRequest struct {
	Credentials
	Name             string `json:"name"`
	Position         string `json:"position"`
	Company          string `json:"company"`
	Phone            string `json:"phone"`
	Website          string `json:"website"`
	SignatureEnabled *bool  `json:"signatureEnabled"`
}

type SignatureUploadRequest struct {
	Credentials
	Image string `json:"image"`
}
