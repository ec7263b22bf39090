// Package hostfake provides an in-memory host platform for tests.
package hostfake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/trackerext/article-templates/backend/internal/host"
)

// Identity is a scriptable acting identity.
type Identity struct {
	UserID   string
	UserName string
	Name     string
	Mail     string

	// Grants maps capability names to a grant. Project-scoped checks
	// consult Grants[capability+":"+projectKey] first, then the bare
	// capability name.
	Grants map[string]bool

	// PermissionErr, when set, is returned from every permission
	// check. The gate must collapse it to a denial.
	PermissionErr error
}

func (u *Identity) ID() string       { return u.UserID }
func (u *Identity) Login() string    { return u.UserName }
func (u *Identity) FullName() string { return u.Name }
func (u *Identity) Email() string    { return u.Mail }

// HasPermission reports the scripted grant.
func (u *Identity) HasPermission(_ context.Context, capability string, project *host.Project) (bool, error) {
	if u.PermissionErr != nil {
		return false, u.PermissionErr
	}
	if project != nil {
		if granted, ok := u.Grants[capability+":"+project.Key]; ok {
			return granted, nil
		}
	}
	return u.Grants[capability], nil
}

// Host is an in-memory implementation of the platform ports.
type Host struct {
	mu         sync.Mutex
	projects   map[string]*host.Project
	articles   map[string]*host.Article
	identities map[string]*Identity
	draftSeq   int
}

// New creates an empty fake host.
func New() *Host {
	return &Host{
		projects:   make(map[string]*host.Project),
		articles:   make(map[string]*host.Article),
		identities: make(map[string]*Identity),
	}
}

// AddProject registers a project under its key.
func (h *Host) AddProject(p *host.Project) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.projects[p.Key] = p
}

// AddArticle registers an article under its ID.
func (h *Host) AddArticle(a *host.Article) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.articles[a.ID] = a
}

// AddIdentity registers an identity resolvable by token.
func (h *Host) AddIdentity(token string, u *Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identities[token] = u
}

// FindByKey implements host.Projects.
func (h *Host) FindByKey(_ context.Context, key string) (*host.Project, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projects[key], nil
}

// CreateDraft implements host.Articles.
func (h *Host) CreateDraft(_ context.Context, project *host.Project, _ host.Identity, spec host.DraftSpec) (*host.Article, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.draftSeq++
	draft := &host.Article{
		ID:      fmt.Sprintf("draft-%d", h.draftSeq),
		URL:     fmt.Sprintf("https://host.test/articles/%s/draft-%d", project.Key, h.draftSeq),
		Summary: spec.Summary,
		Content: spec.Content,
	}
	if spec.ParentArticleID != "" {
		draft.Parent = h.articles[spec.ParentArticleID]
	}
	h.articles[draft.ID] = draft
	return draft, nil
}

// FindByID implements host.Articles.
func (h *Host) FindByID(_ context.Context, id string) (*host.Article, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.articles[id], nil
}

// Resolve implements host.Identities.
func (h *Host) Resolve(_ context.Context, token string) (host.Identity, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	u, ok := h.identities[token]
	if !ok {
		return nil, errors.New("unknown identity token")
	}
	return u, nil
}
