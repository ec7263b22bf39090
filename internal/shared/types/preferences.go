package types

// Preferences holds the per-identity view preferences. A fresh
// identity gets the zero value; preferences are never explicitly
// destroyed.
type Preferences struct {
	Favorites         []string `json:"favorites"`
	ShowFavoritesOnly bool     `json:"showFavoritesOnly"`
	AuthorFilter      []string `json:"authorFilter"`
	ProjectFilter     []string `json:"projectFilter"`
}

// HasFavorite reports whether the template ID is in the favorites set.
func (p Preferences) HasFavorite(id string) bool {
	for _, f := range p.Favorites {
		if f == id {
			return true
		}
	}
	return false
}
