package filters

import "github.com/iedon/scutils-go/content"

// ObjectURL returns the absolute URL of the object stored under label and pk.
func (s *Set) ObjectURL(label string, pk any) (string, error) {
	obj, err := s.deps.Registry.Get(s.ctx, label, pk)
	if err != nil {
		return "", err
	}
	return obj.AbsoluteURL(), nil
}

// Latest returns the newest n objects registered under label:
// {{ $recent := latest "flatpages.FlatPage" 5 }}.
func (s *Set) Latest(label string, n int) ([]content.Object, error) {
	return s.deps.Registry.Latest(s.ctx, label, n)
}

// FirstName is the user's first name, or the username.
func (s *Set) FirstName(u content.User) string {
	return u.ShortName()
}
