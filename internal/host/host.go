// Package host defines the narrow contracts this service consumes from
// the issue-tracking platform: project lookup, article drafting, and
// identity/permission resolution.
//
// The engine only ever sees these ports; transport details (REST
// client, fakes in tests) stay behind them.
package host

import "context"

// Capability names understood by the platform's permission model.
const (
	// CapCreateArticle gates drafting articles in a project and, by
	// extension, using project-pinned templates.
	CapCreateArticle = "CREATE_ARTICLE"
	// CapUpdateApp is the administrative capability that overrides the
	// locked-for-others rule.
	CapUpdateApp = "ADMIN_UPDATE_APP"
)

// Project is the platform's project record.
type Project struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Article is the platform's article record.
type Article struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
	Parent  *Article `json:"parentArticle,omitempty"`
}

// DraftSpec describes the draft article to instantiate from a template.
type DraftSpec struct {
	Summary         string
	Content         string
	ParentArticleID string
}

// Identity is the acting identity for a request.
//
// HasPermission is fallible by contract: missing permission
// infrastructure must surface as an error, and the permission gate
// collapses any error to false (fail closed) rather than propagating.
type Identity interface {
	ID() string
	Login() string
	FullName() string
	Email() string
	HasPermission(ctx context.Context, capability string, project *Project) (bool, error)
}

// Projects looks up projects in the platform registry. A nil project
// with a nil error means the key is unknown.
type Projects interface {
	FindByKey(ctx context.Context, key string) (*Project, error)
}

// Articles drafts and resolves articles. FindByID returns (nil, nil)
// for an unknown ID.
type Articles interface {
	CreateDraft(ctx context.Context, project *Project, actor Identity, spec DraftSpec) (*Article, error)
	FindByID(ctx context.Context, id string) (*Article, error)
}

// Identities resolves the acting identity from the opaque per-request
// token the platform hands the extension.
type Identities interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}
