// Package folders maps folder alias keys (INBOX, SENT, ...) to the canonical
// mailbox names used on the wire and as cache keys.
package folders

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/internal/enum"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
)

type Resolver struct {
	canonical map[enum.FolderKey]string
	aliases   map[string]enum.FolderKey
}

func NewResolver(cfg *config.FolderConfig) *Resolver {
	r := &Resolver{
		canonical: map[enum.FolderKey]string{
			enum.FolderInbox:  cfg.Inbox,
			enum.FolderSent:   cfg.Sent,
			enum.FolderDrafts: cfg.Drafts,
			enum.FolderTrash:  cfg.Trash,
			enum.FolderJunk:   cfg.Junk,
		},
		aliases: make(map[string]enum.FolderKey),
	}
	for key, name := range r.canonical {
		r.aliases[strings.ToLower(name)] = key
	}
	return r
}

// Resolve accepts an alias key in any case or a canonical name and returns
// the canonical name.
func (r *Resolver) Resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.Wrap(mailerrors.ErrInvalidFolder, "folder is required")
	}
	if canonical, ok := r.canonical[enum.GetFolderKey(trimmed)]; ok {
		return canonical, nil
	}
	if key, ok := r.aliases[strings.ToLower(trimmed)]; ok {
		return r.canonical[key], nil
	}
	return "", errors.Wrapf(mailerrors.ErrInvalidFolder, "unknown folder %q", name)
}

func (r *Resolver) Canonical(key enum.FolderKey) string {
	return r.canonical[key]
}

// Alias returns the alias key for a canonical name.
func (r *Resolver) Alias(canonical string) (enum.FolderKey, bool) {
	key, ok := r.aliases[strings.ToLower(canonical)]
	return key, ok
}

func (r *Resolver) IsTrash(canonical string) bool {
	return strings.EqualFold(canonical, r.canonical[enum.FolderTrash])
}

func (r *Resolver) Trash() string {
	return r.canonical[enum.FolderTrash]
}

func (r *Resolver) Sent() string {
	return r.canonical[enum.FolderSent]
}

func (r *Resolver) Drafts() string {
	return r.canonical[enum.FolderDrafts]
}

// All returns alias to canonical name, in display order.
func (r *Resolver) All() []Folder {
	result := make([]Folder, 0, len(enum.FolderKeys))
	for _, key := range enum.FolderKeys {
		result = append(result, Folder{Key: key, Name: r.canonical[key]})
	}
	return result
}

type Folder struct {
	Key  enum.FolderKey `json:"key"`
	Name string         `json:"name"`
}
