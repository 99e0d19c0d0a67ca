package dto

import "github.com/customeros/mailadmin/internal/enum"

// Event is the envelope published on the events exchange.
type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id        string             `json:"id"`
	EventType enum.MailEventType `json:"eventType"`
	Data      MailEvent          `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	UserEmail   string `json:"userEmail"`
	RequestId   string `json:"requestId"`
	Timestamp   string `json:"timestamp"`
}

// MailEvent describes one committed mailbox mutation.
type MailEvent struct {
	Type      enum.MailEventType `json:"type"`
	UserEmail string             `json:"userEmail"`
	Folder    string             `json:"folder,omitempty"`
	Target    string             `json:"target,omitempty"`
	Uid       uint32             `json:"uid,omitempty"`
	MessageId string             `json:"messageId,omitempty"`
	Permanent bool               `json:"permanent,omitempty"`
}
