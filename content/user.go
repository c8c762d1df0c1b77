package content

import "strings"

// User is the subset of account data templates display.
type User struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// ShortName is the first name, or the username when no first name is set.
func (u User) ShortName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return u.FirstName
	}
	return u.Username
}
