package filters

import "strings"

const logoutSuffix = "/accounts/logout/"

// Split splits value on sep (default ",") and trims every element.
func (s *Set) Split(value string, sep ...string) []string {
	separator := ","
	if len(sep) > 0 && sep[0] != "" {
		separator = sep[0]
	}
	parts := strings.Split(value, separator)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// NoLogout keeps the logout page out of "next" redirects after login.
func (s *Set) NoLogout(value string) string {
	if strings.HasSuffix(value, logoutSuffix) {
		return "/"
	}
	return value
}
