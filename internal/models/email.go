package models

import "time"

type AttachmentMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type Attachment struct {
	AttachmentMeta
	ContentID string `json:"cid,omitempty"`
	Inline    bool   `json:"inline,omitempty"`
	Content   []byte `json:"-"`
}

// EmailSummary is one entry of a folder listing. Detail is attached once the
// message has been opened and lives as long as the owning partition.
type EmailSummary struct {
	UID         uint32           `json:"uid"`
	Subject     string           `json:"subject"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Date        time.Time        `json:"date"`
	Flags       []string         `json:"flags"`
	Seen        bool             `json:"seen"`
	Size        uint32           `json:"size"`
	Attachments []AttachmentMeta `json:"attachments"`

	Detail *EmailDetail `json:"-"`
}

type EmailDetail struct {
	UID         uint32       `json:"uid"`
	MessageID   string       `json:"messageId,omitempty"`
	Subject     string       `json:"subject"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Cc          string       `json:"cc,omitempty"`
	Bcc         string       `json:"bcc,omitempty"`
	Date        time.Time    `json:"date"`
	Flags       []string     `json:"flags"`
	Seen        bool         `json:"seen"`
	Size        uint32       `json:"size"`
	Text        string       `json:"text"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments"`
}

// RawSummary is what the transport returns per message for a listing.
type RawSummary struct {
	UID          uint32
	Flags        []string
	Size         uint32
	InternalDate time.Time
	Header       []byte
	Attachments  []AttachmentMeta
}

type FolderFetch struct {
	Messages []*RawSummary
	Total    int
}

// RawMessage is a full RFC 5322 message fetched for hydration.
type RawMessage struct {
	UID          uint32
	Flags        []string
	Size         uint32
	InternalDate time.Time
	Body         []byte
}

type FolderStatus struct {
	Name     string
	Messages uint32
	Unseen   uint32
}

type FolderStats struct {
	Name     string `json:"name"`
	Messages uint32 `json:"messages"`
	Unseen   uint32 `json:"unseen"`
	Error    string `json:"error,omitempty"`
}
