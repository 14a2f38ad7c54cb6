package models

// Identity is the authenticated caller as supplied by the identity provider.
type Identity struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// Member returns the membership entry this identity joins and leaves with.
func (i Identity) Member() Member {
	return Member{UID: i.UID, Name: i.Name, Photo: i.Photo}
}
