package client

import (
	"errors"
	"net/url"
	"strings"
)

var ErrNotInviteLink = errors.New("not a party invite link")

// ParseInviteLink extracts the party id from an invite link of the form
// <origin>/party/<id>. A client landing on such a link treats it as an
// implicit join instruction.
func ParseInviteLink(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", ErrNotInviteLink
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "party" || parts[1] == "" {
		return "", ErrNotInviteLink
	}
	return parts[1], nil
}
