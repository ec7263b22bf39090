package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

func view(id, name, authorID, projectID string) types.TemplateView {
	return types.TemplateView{
		StoredTemplate: types.StoredTemplate{
			ID:        id,
			Name:      name,
			ProjectID: projectID,
			Author:    types.Author{ID: authorID, FullName: "User " + authorID},
		},
	}
}

func baseList() []types.TemplateView {
	anon := view("t3", "Checklist", "", "")
	anon.Author = types.Author{}
	return []types.TemplateView{
		view("t1", "Retrospective", "alice", ""),
		view("t2", "Meeting notes", "bob", "DOCS"),
		anon,
	}
}

func ids(list []types.TemplateView) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestTextFilter(t *testing.T) {
	res, err := Derive(baseList(), Params{Text: "meet"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids(res.Visible))
}

func TestAuthorFilterWithSentinel(t *testing.T) {
	res, err := Derive(baseList(), Params{
		Prefs: types.Preferences{AuthorFilter: []string{"alice", NoAuthor}},
	}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t3"}, ids(res.Visible))
}

func TestProjectFilterWithSentinel(t *testing.T) {
	res, err := Derive(baseList(), Params{
		Prefs: types.Preferences{ProjectFilter: []string{NoProject}},
	}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t3"}, ids(res.Visible))

	res, err = Derive(baseList(), Params{
		Prefs: types.Preferences{ProjectFilter: []string{"DOCS"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids(res.Visible))
}

func TestFavoritesOnlyActiveViewOnly(t *testing.T) {
	prefs := types.Preferences{ShowFavoritesOnly: true, Favorites: []string{"t2"}}

	res, err := Derive(baseList(), Params{View: ViewActive, Prefs: prefs}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids(res.Visible))

	res, err = Derive(baseList(), Params{View: ViewTrash, Prefs: prefs}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Visible, 3, "trash view ignores the favorites toggle")
}

func TestSortByNameAndAuthor(t *testing.T) {
	res, err := Derive(baseList(), Params{SortBy: SortByName}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t2", "t1"}, ids(res.Visible))

	res, err = Derive(baseList(), Params{SortBy: SortByName, Descending: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(res.Visible))

	// Author order: User alice, User bob, n/a.
	res, err = Derive(baseList(), Params{SortBy: SortByAuthor}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t1", "t2"}, ids(res.Visible))
}

func TestSortDescendingKeepsEqualKeyOrder(t *testing.T) {
	dupes := []types.TemplateView{
		view("t1", "Runbook", "alice", ""),
		view("t2", "Runbook", "bob", ""),
		view("t3", "Runbook", "carol", ""),
	}
	res, err := Derive(dupes, Params{SortBy: SortByName, Descending: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(res.Visible), "equal keys keep insertion order")
}

type recordingSaver struct {
	authorCalls  [][]string
	projectCalls [][]string
}

func (s *recordingSaver) SetAuthorFilter(ids []string) error {
	s.authorCalls = append(s.authorCalls, ids)
	return nil
}

func (s *recordingSaver) SetProjectFilter(ids []string) error {
	s.projectCalls = append(s.projectCalls, ids)
	return nil
}

func TestSelfHealingReset(t *testing.T) {
	saver := &recordingSaver{}
	res, err := Derive(baseList(), Params{
		Prefs: types.Preferences{AuthorFilter: []string{"ghost"}},
	}, saver)
	require.NoError(t, err)

	assert.True(t, res.FiltersReset)
	assert.Len(t, res.Visible, 3, "derivation reruns without the stale filters")
	assert.Equal(t, [][]string{{}}, saver.authorCalls)
	assert.Equal(t, [][]string{{}}, saver.projectCalls)
}

func TestNoResetWhenTextIsTheCause(t *testing.T) {
	saver := &recordingSaver{}
	res, err := Derive(baseList(), Params{
		Text:  "zzz",
		Prefs: types.Preferences{AuthorFilter: []string{"ghost"}},
	}, saver)
	require.NoError(t, err)

	assert.False(t, res.FiltersReset)
	assert.Empty(t, res.Visible)
	assert.Empty(t, saver.authorCalls)
}

func TestSelectionReseed(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("t1")
	sel.Toggle("t2")
	sel.Toggle("gone")
	require.Equal(t, 3, sel.Len())

	sel.Reseed(baseList())
	assert.Equal(t, 2, sel.Len())
	assert.True(t, sel.Has("t1"))
	assert.False(t, sel.Has("gone"))

	sel.Toggle("t1")
	assert.False(t, sel.Has("t1"), "toggle removes a checked id")

	sel.Clear()
	assert.Zero(t, sel.Len())
}
