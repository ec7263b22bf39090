package template

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/host/hostfake"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/logging"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
	"github.com/trackerext/article-templates/backend/internal/storage"
)

type fixture struct {
	svc     *Service
	backend *storage.Memory
	fake    *hostfake.Host
	now     *int64
	seq     *int
}

func newFixture() *fixture {
	f := &fixture{
		backend: storage.NewMemory(),
		fake:    hostfake.New(),
		now:     new(int64),
		seq:     new(int),
	}
	*f.now = 1_700_000_000_000
	f.svc = NewService(f.backend, f.fake, f.fake, logging.NewNop(), Config{}).
		WithClock(func() int64 { return *f.now }).
		WithIDGenerator(func() string {
			*f.seq++
			return fmt.Sprintf("tmpl_%03d", *f.seq)
		})
	return f
}

func newActor(id string, grants map[string]bool) *hostfake.Identity {
	return &hostfake.Identity{
		UserID:   id,
		UserName: id,
		Name:     "User " + id,
		Mail:     id + "@example.test",
		Grants:   grants,
	}
}

func i64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int     { return &v }

func TestUpsertCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	view, err := f.svc.Upsert(ctx, alice, types.TemplateInput{
		Name:    "Weekly report",
		Summary: "Status summary",
		Content: "## Done\n## Next",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, *f.now, view.CreatedAt)
	assert.Equal(t, 0, view.UsageCount)
	assert.Equal(t, "alice", view.Author.ID)
	assert.True(t, view.CanEdit)

	favs := f.svc.Preferences(alice).Favorites
	assert.Contains(t, favs, view.ID, "new templates are auto-favorited")
}

func TestUpsertPreservesCreatedAtAndUsage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	created, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Original"})
	require.NoError(t, err)
	require.NoError(t, f.svc.IncrementUsage(alice, created.ID))

	*f.now += 5000
	updated, err := f.svc.Upsert(ctx, alice, types.TemplateInput{
		ID:         created.ID,
		Name:       "Renamed",
		CreatedAt:  i64Ptr(99),
		UsageCount: intPtr(42),
	})
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "creation stamp never regresses")
	assert.Equal(t, 1, updated.UsageCount, "usage counter survives edits untouched")
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.Author, updated.Author, "author frozen at create")
}

func TestUpsertSanitizesMarkup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	view, err := f.svc.Upsert(ctx, alice, types.TemplateInput{
		Name:    `Plan <script>alert(1)</script>`,
		Content: `Intro <script>alert(1)</script><b>bold</b>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, view.Name, "<script>")
	assert.NotContains(t, view.Content, "<script>")
	assert.Contains(t, view.Content, "<b>bold</b>", "harmless markup survives in content")
}

func TestDeleteRestoreRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	created, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Runbook"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, alice, created.ID))

	trash, err := f.svc.ListDeleted(ctx, alice, "all")
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, created.ID, trash[0].ID)
	assert.Equal(t, *f.now, trash[0].DeletedAt)

	active, err := f.svc.ListActive(ctx, alice, "all")
	require.NoError(t, err)
	for _, v := range active {
		assert.NotEqual(t, created.ID, v.ID, "deleted template must leave the active list")
	}

	restored, err := f.svc.Restore(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Zero(t, restored.DeletedAt)
	assert.Equal(t, created.StoredTemplate, restored.StoredTemplate)
}

func TestDeleteUnknownID(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	err := f.svc.Delete(context.Background(), alice, "tmpl_nope")
	assert.ErrorContains(t, err, "not found")
}

func TestDeletePredefinedBeforeCopy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)
	predefined := Predefined()[0]

	// Fresh store: the predefined set exists only as injected entries.
	require.NoError(t, f.svc.Delete(ctx, alice, predefined.ID))

	trash, err := f.svc.ListDeleted(ctx, alice, "all")
	require.NoError(t, err)
	found := false
	for _, v := range trash {
		if v.ID == predefined.ID {
			found = true
			assert.False(t, v.IsPrivate)
		}
	}
	assert.True(t, found, "trashed predefined template appears in trash")
}

func TestBulkDeletePartialSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", map[string]bool{})
	bob := newActor("bob", nil)

	open, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Open"})
	require.NoError(t, err)
	locked, err := f.svc.Upsert(ctx, bob, types.TemplateInput{Name: "Locked", LockedForOthers: true})
	require.NoError(t, err)

	count, err := f.svc.BulkDelete(ctx, alice, []string{open.ID, locked.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "gate failures shrink the batch silently")

	active, err := f.svc.ListActive(ctx, alice, "all")
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, v := range active {
		ids[v.ID] = true
	}
	assert.False(t, ids[open.ID])
	assert.True(t, ids[locked.ID], "template the actor may not edit stays active")
}

func TestBulkDeleteNothingQualifies(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	_, err := f.svc.BulkDelete(context.Background(), alice, []string{"tmpl_nope"})
	assert.ErrorContains(t, err, "permission")
}

func TestBulkRestore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	a, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "A"})
	require.NoError(t, err)
	b, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "B", IsPrivate: true})
	require.NoError(t, err)

	_, err = f.svc.BulkDelete(ctx, alice, []string{a.ID, b.ID})
	require.NoError(t, err)

	count, err := f.svc.BulkRestore(ctx, alice, []string{a.ID, b.ID, "tmpl_nope"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	trash, err := f.svc.ListDeleted(ctx, alice, "all")
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestPermanentDeleteDropsFavorite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	created, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Ephemeral"})
	require.NoError(t, err)
	require.Contains(t, f.svc.Preferences(alice).Favorites, created.ID)

	require.NoError(t, f.svc.Delete(ctx, alice, created.ID))
	require.NoError(t, f.svc.PermanentDelete(ctx, alice, created.ID))

	assert.NotContains(t, f.svc.Preferences(alice).Favorites, created.ID)

	trash, err := f.svc.ListDeleted(ctx, alice, "all")
	require.NoError(t, err)
	assert.Empty(t, trash)

	err = f.svc.PermanentDelete(ctx, alice, created.ID)
	assert.ErrorContains(t, err, "not found")
}

func TestImportPredefinedNameDedupe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	// Seeding has already copied the predefined set by ID, so every
	// name is taken and the explicit import adds nothing.
	_, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Trigger seeding"})
	require.NoError(t, err)

	count, err := f.svc.ImportPredefined(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportPredefinedFreshIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := newActor("alice", nil)

	// Mark the import done without seeding, leaving shared empty.
	st := f.svc.storeFor(alice)
	done := true
	require.NoError(t, st.save(partial{InitialImportDone: &done}))

	count, err := f.svc.ImportPredefined(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, len(Predefined()), count)

	active, err := f.svc.ListActive(ctx, alice, "all")
	require.NoError(t, err)
	require.Len(t, active, count)
	for _, v := range active {
		assert.NotContains(t, v.ID, "sys-", "imported copies get generated IDs")
		assert.Equal(t, *f.now, v.CreatedAt)
	}

	again, err := f.svc.ImportPredefined(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, again, "second import finds every name taken")
}

func TestFavoritesIsolatedPerIdentity(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)
	bob := newActor("bob", nil)

	favs, err := f.svc.ToggleFavorite(alice, "tmpl_x")
	require.NoError(t, err)
	assert.Equal(t, []string{"tmpl_x"}, favs)

	assert.Empty(t, f.svc.Preferences(bob).Favorites)

	favs, err = f.svc.ToggleFavorite(alice, "tmpl_x")
	require.NoError(t, err)
	assert.Empty(t, favs, "second toggle removes")
}

func TestPreferenceSetters(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	require.NoError(t, f.svc.SetAuthorFilter(alice, []string{"bob", "no-author"}))
	require.NoError(t, f.svc.SetProjectFilter(alice, []string{"DOCS"}))
	require.NoError(t, f.svc.SetShowFavoritesOnly(alice, true))

	prefs := f.svc.Preferences(alice)
	assert.Equal(t, []string{"bob", "no-author"}, prefs.AuthorFilter)
	assert.Equal(t, []string{"DOCS"}, prefs.ProjectFilter)
	assert.True(t, prefs.ShowFavoritesOnly)
}

func TestListActiveProjectsParam(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOCS"})
	alice := newActor("alice", map[string]bool{host.CapCreateArticle + ":DOCS": true})

	_, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Global"})
	require.NoError(t, err)
	pinned, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Pinned", ProjectID: "DOCS"})
	require.NoError(t, err)

	all, err := f.svc.ListActive(ctx, alice, "all")
	require.NoError(t, err)
	withDocs, err := f.svc.ListActive(ctx, alice, "DOCS")
	require.NoError(t, err)
	globalOnly, err := f.svc.ListActive(ctx, alice, "")
	require.NoError(t, err)

	assert.Len(t, withDocs, len(all))
	assert.Len(t, globalOnly, len(all)-1, "empty projects param keeps only global templates")
	for _, v := range globalOnly {
		assert.NotEqual(t, pinned.ID, v.ID)
	}
}

func TestProjectShortNameInView(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOC"})
	alice := newActor("alice", map[string]bool{host.CapCreateArticle + ":DOCS": true})

	view, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Pinned", ProjectID: "DOCS"})
	require.NoError(t, err)

	assert.Equal(t, "Documentation", view.ProjectName)
	assert.Equal(t, "DOC", view.ProjectID, "view carries the project short name")
}

func TestIncrementUsageNoMatchIsNoOp(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	assert.NoError(t, f.svc.IncrementUsage(alice, ""))
	assert.NoError(t, f.svc.IncrementUsage(alice, "tmpl_nope"))
}
