// Package pipeline derives the visible template list from a base list
// plus the viewer's filter, sort, and favorites preferences, and tracks
// the checked-row selection that feeds bulk operations.
package pipeline

import (
	"sort"
	"strings"

	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// Reserved filter values. NoAuthor selects templates without an author
// snapshot; NoProject selects global templates.
const (
	NoAuthor  = "no-author"
	NoProject = "all"
)

// View selects which base list the preferences apply to. Favorites-only
// filtering is meaningful for the active view alone.
type View int

const (
	ViewActive View = iota
	ViewTrash
)

// SortKey is a sortable column.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByAuthor SortKey = "author"
)

// Params bundles one derivation's inputs.
type Params struct {
	View       View
	Text       string
	SortBy     SortKey
	Descending bool
	Prefs      types.Preferences
}

// Saver persists a filter reset triggered by the self-healing guard.
type Saver interface {
	SetAuthorFilter(ids []string) error
	SetProjectFilter(ids []string) error
}

// Result is the derived visible list. FiltersReset reports that the
// author and project filters were cleared because they alone emptied
// the view.
type Result struct {
	Visible      []types.TemplateView
	FiltersReset bool
}

// Derive applies all filters (AND-composed) and the sort to base.
//
// If the result is empty, the text filter is empty, and the base list
// is not, residual author/project filters are the only possible cause:
// they are cleared, persisted through saver, and the derivation reruns
// without them. Stale filters referencing vanished templates would
// otherwise leave the view empty with no way to see why.
func Derive(base []types.TemplateView, p Params, saver Saver) (Result, error) {
	visible := apply(base, p)

	needsReset := len(visible) == 0 && len(base) > 0 && p.Text == "" &&
		(len(p.Prefs.AuthorFilter) > 0 || len(p.Prefs.ProjectFilter) > 0)
	if !needsReset {
		return Result{Visible: visible}, nil
	}

	if saver != nil {
		if err := saver.SetAuthorFilter([]string{}); err != nil {
			return Result{}, err
		}
		if err := saver.SetProjectFilter([]string{}); err != nil {
			return Result{}, err
		}
	}
	p.Prefs.AuthorFilter = nil
	p.Prefs.ProjectFilter = nil
	return Result{Visible: apply(base, p), FiltersReset: true}, nil
}

func apply(base []types.TemplateView, p Params) []types.TemplateView {
	visible := make([]types.TemplateView, 0, len(base))
	text := strings.ToLower(p.Text)
	for _, t := range base {
		if text != "" && !strings.Contains(strings.ToLower(t.Name), text) {
			continue
		}
		if !matchAuthor(t, p.Prefs.AuthorFilter) {
			continue
		}
		if !matchProject(t, p.Prefs.ProjectFilter) {
			continue
		}
		if p.View == ViewActive && p.Prefs.ShowFavoritesOnly && !p.Prefs.HasFavorite(t.ID) {
			continue
		}
		visible = append(visible, t)
	}
	sortViews(visible, p.SortBy, p.Descending)
	return visible
}

func matchAuthor(t types.TemplateView, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, id := range filter {
		if id == NoAuthor && t.Author.ID == "" {
			return true
		}
		if id == t.Author.ID {
			return true
		}
	}
	return false
}

func matchProject(t types.TemplateView, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, id := range filter {
		if id == NoProject && t.ProjectID == "" {
			return true
		}
		if id == t.ProjectID {
			return true
		}
	}
	return false
}

// authorLabel is what the author column shows and sorts by.
func authorLabel(t types.TemplateView) string {
	if t.Author.FullName != "" {
		return t.Author.FullName
	}
	if t.Author.Login != "" {
		return t.Author.Login
	}
	return "n/a"
}

func sortViews(list []types.TemplateView, key SortKey, descending bool) {
	field := func(t types.TemplateView) string {
		if key == SortByAuthor {
			return authorLabel(t)
		}
		return t.Name
	}
	sort.SliceStable(list, func(i, j int) bool {
		cmp := strings.Compare(strings.ToLower(field(list[i])), strings.ToLower(field(list[j])))
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
