package enum

type MailEventType string

const (
	MailEventEmailMoved   MailEventType = "EMAIL_MOVED"
	MailEventEmailDeleted MailEventType = "EMAIL_DELETED"
	MailEventEmailSent    MailEventType = "EMAIL_SENT"
	MailEventDraftSaved   MailEventType = "DRAFT_SAVED"
	MailEventCacheCleared MailEventType = "CACHE_CLEARED"
)

func (t MailEventType) String() string {
	return string(t)
}

type FlagName string

const (
	FlagSeen    FlagName = `\Seen`
	FlagDraft   FlagName = `\Draft`
	FlagDeleted FlagName = `\Deleted`
)

func (f FlagName) String() string {
	return string(f)
}
