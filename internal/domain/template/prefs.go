package template

import (
	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// Preferences returns the actor's view settings.
func (s *Service) Preferences(actor host.Identity) types.Preferences {
	st := s.storeFor(actor)
	return types.Preferences{
		Favorites:         st.favorites(),
		ShowFavoritesOnly: st.showFavoritesOnly(),
		AuthorFilter:      st.authorFilter(),
		ProjectFilter:     st.projectFilter(),
	}
}

// ToggleFavorite adds or removes the template ID from the actor's
// favorites and returns the updated list. The ID is not validated
// against the stored collections; stale entries are harmless and get
// dropped when the template is permanently deleted.
func (s *Service) ToggleFavorite(actor host.Identity, templateID string) ([]string, error) {
	st := s.storeFor(actor)
	favs := st.favorites()
	if contains(favs, templateID) {
		favs = removeString(favs, templateID)
	} else {
		favs = append(favs, templateID)
	}
	if err := st.setFavorites(favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// SetShowFavoritesOnly stores the favorites-only listing flag.
func (s *Service) SetShowFavoritesOnly(actor host.Identity, val bool) error {
	return s.storeFor(actor).setShowFavoritesOnly(val)
}

// SetAuthorFilter replaces the author filter selection.
func (s *Service) SetAuthorFilter(actor host.Identity, authorIDs []string) error {
	return s.storeFor(actor).setAuthorFilter(authorIDs)
}

// SetProjectFilter replaces the project filter selection.
func (s *Service) SetProjectFilter(actor host.Identity, projectIDs []string) error {
	return s.storeFor(actor).setProjectFilter(projectIDs)
}
