package enum

import "strings"

type FolderKey string

const (
	FolderInbox  FolderKey = "INBOX"
	FolderSent   FolderKey = "SENT"
	FolderDrafts FolderKey = "DRAFTS"
	FolderTrash  FolderKey = "TRASH"
	FolderJunk   FolderKey = "JUNK"
)

// FolderKeys in display order
var FolderKeys = []FolderKey{FolderInbox, FolderSent, FolderDrafts, FolderTrash, FolderJunk}

func (k FolderKey) String() string {
	return string(k)
}

func GetFolderKey(s string) FolderKey {
	return FolderKey(strings.ToUpper(strings.TrimSpace(s)))
}
