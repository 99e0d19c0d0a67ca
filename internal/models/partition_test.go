package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_WithDetailCopiesOnWrite(t *testing.T) {
	original := &Partition{
		Entries: []*EmailSummary{
			{UID: 3, Subject: "c"},
			{UID: 2, Subject: "b"},
		},
		TotalCount: 2,
		FetchedAt:  time.Unix(100, 0),
	}

	detail := &EmailDetail{UID: 2, Text: "body"}
	patched, ok := original.WithDetail(2, detail)
	require.True(t, ok)

	assert.Nil(t, original.Entries[1].Detail)
	assert.Same(t, detail, patched.Entries[1].Detail)
	assert.Same(t, original.Entries[0], patched.Entries[0])
	assert.Equal(t, original.FetchedAt, patched.FetchedAt)
	assert.Equal(t, original.TotalCount, patched.TotalCount)
}

func TestPartition_WithDetailUnknownUid(t *testing.T) {
	original := &Partition{Entries: []*EmailSummary{{UID: 1}}}
	same, ok := original.WithDetail(9, &EmailDetail{})
	assert.False(t, ok)
	assert.Same(t, original, same)
}

func TestHeaderValue_Display(t *testing.T) {
	assert.Equal(t, "subject", PlainHeader("subject").Display())
	assert.Equal(t, "a@x.com", AddressedHeader("", "a@x.com").Display())
	assert.Equal(t, "Ann <a@x.com>", AddressedHeader("Ann", "a@x.com").Display())

	multi := MultipleHeader([]HeaderValue{AddressedHeader("Ann", "a@x.com"), AddressedHeader("", "b@x.com")})
	assert.Equal(t, HeaderMultiple, multi.Kind)
	assert.Equal(t, "Ann <a@x.com>, b@x.com", multi.Display())
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, multi.Addresses())

	assert.Equal(t, HeaderAddressed, MultipleHeader([]HeaderValue{AddressedHeader("", "c@x.com")}).Kind)
	assert.Equal(t, "", MultipleHeader(nil).Display())
}
