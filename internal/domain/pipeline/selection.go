package pipeline

import "github.com/trackerext/article-templates/backend/internal/shared/types"

// Selection is the set of checked template IDs backing bulk delete and
// bulk restore. Not safe for concurrent use.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Reseed drops checked IDs no longer present in the visible list, so a
// refreshed or refiltered view cannot feed vanished IDs into a bulk
// operation.
func (s *Selection) Reseed(visible []types.TemplateView) {
	present := make(map[string]struct{}, len(visible))
	for _, t := range visible {
		present[t.ID] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// IDs returns the checked IDs in unspecified order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
