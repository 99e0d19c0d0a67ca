package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "github.com/customeros/mailadmin/api/errors"
	"github.com/customeros/mailadmin/dto"
)

func TestReplyReferences(t *testing.T) {
	refs := replyReferences(dto.ReplyOriginal{
		MessageId:  "<b@x>",
		References: []string{"<a@x>", "<b@x>"},
	})
	assert.Equal(t, []string{"<a@x>", "<b@x>"}, refs)

	assert.Empty(t, replyReferences(dto.ReplyOriginal{}))
}

func TestCleanRecipients(t *testing.T) {
	errs := apierrors.NewMultiErrors()

	cleaned := cleanRecipients(errs, "to", dto.Recipients{"Bob <bob@example.com>", "bob@example.com", "carol@example.com"})

	assert.False(t, errs.HasErrors())
	assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, cleaned)
	assert.Nil(t, cleanRecipients(errs, "cc", nil))
}

func TestCleanRecipients_Invalid(t *testing.T) {
	errs := apierrors.NewMultiErrors()

	cleaned := cleanRecipients(errs, "bcc", dto.Recipients{"nobody"})

	assert.Empty(t, cleaned)
	assert.Len(t, errs.Errors["bcc"], 1)
}
