package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInviteLink(t *testing.T) {
	id, err := ParseInviteLink("https://example.com/party/abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestParseInviteLinkTrailingSlash(t *testing.T) {
	id, err := ParseInviteLink("https://example.com/party/abc-123/")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestParseInviteLinkRejectsOtherPaths(t *testing.T) {
	cases := []string{
		"https://example.com/",
		"https://example.com/party",
		"https://example.com/party/",
		"https://example.com/watch/abc-123",
		"https://example.com/party/abc/extra",
	}
	for _, link := range cases {
		_, err := ParseInviteLink(link)
		assert.ErrorIs(t, err, ErrNotInviteLink, "link %q", link)
	}
}
