package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

func TestCreateDraftBumpsUsage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOCS"})
	alice := newActor("alice", map[string]bool{host.CapCreateArticle + ":DOCS": true})

	created, err := f.svc.Upsert(ctx, alice, types.TemplateInput{Name: "Runbook", Content: "## Steps"})
	require.NoError(t, err)

	article, err := f.svc.CreateDraft(ctx, alice, DraftRequest{
		TemplateID: created.ID,
		Summary:    "New runbook",
		Content:    created.Content,
		ProjectID:  "DOCS",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "New runbook", article.Summary)

	active, err := f.svc.ListActive(ctx, alice, "all")
	require.NoError(t, err)
	for _, v := range active {
		if v.ID == created.ID {
			assert.Equal(t, 1, v.UsageCount)
		}
	}
}

func TestCreateDraftSeedsAndPurges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOCS"})
	alice := newActor("alice", map[string]bool{host.CapCreateArticle + ":DOCS": true})
	st := f.svc.storeFor(alice)

	expired := []types.StoredTemplate{
		{ID: "tmpl_expired", Name: "Expired", DeletedAt: *f.now - f.svc.retentionMillis()},
	}
	require.NoError(t, st.save(partial{DeletedShared: &expired}))

	_, err := f.svc.CreateDraft(ctx, alice, DraftRequest{
		Summary:   "Standalone draft",
		Content:   "No template",
		ProjectID: "DOCS",
	})
	require.NoError(t, err)

	// Drafting is a write-capable read: it seeds a fresh store and
	// persists the trash shrink even without a source template.
	raw := st.load()
	assert.True(t, raw.InitialImportDone)
	assert.Len(t, raw.Shared, len(Predefined()))
	assert.Empty(t, raw.DeletedShared)
}

func TestCreateDraftUnknownProject(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	_, err := f.svc.CreateDraft(context.Background(), alice, DraftRequest{ProjectID: "GONE"})
	assert.ErrorContains(t, err, "not found")
}

func TestCreateDraftWithoutCapability(t *testing.T) {
	f := newFixture()
	f.fake.AddProject(&host.Project{ID: "p1", Key: "DOCS", Name: "Documentation", ShortName: "DOCS"})
	alice := newActor("alice", map[string]bool{})

	_, err := f.svc.CreateDraft(context.Background(), alice, DraftRequest{ProjectID: "DOCS"})
	assert.ErrorContains(t, err, "permission")
}

func TestCreateDraftMissingProject(t *testing.T) {
	f := newFixture()
	alice := newActor("alice", nil)

	_, err := f.svc.CreateDraft(context.Background(), alice, DraftRequest{})
	assert.ErrorContains(t, err, "required")
}

func TestArticleData(t *testing.T) {
	f := newFixture()
	f.fake.AddArticle(&host.Article{ID: "a1", Summary: "Existing", Content: "Body"})

	article, err := f.svc.ArticleData(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Existing", article.Summary)

	_, err = f.svc.ArticleData(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = f.svc.ArticleData(context.Background(), "")
	assert.ErrorContains(t, err, "required")
}
