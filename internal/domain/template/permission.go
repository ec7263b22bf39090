package template

import (
	"context"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// Gate combines the project-level capability check with the
// object-level locked-for-others rule. Every listing consults
// CanAccessProject; every mutation additionally consults CanEdit.
type Gate struct {
	projects host.Projects
}

// NewGate creates a permission gate backed by the project registry.
func NewGate(projects host.Projects) *Gate {
	return &Gate{projects: projects}
}

// CanEdit decides whether the acting identity may modify the template.
// Unlocked templates are editable by anyone; locked ones by their
// author or by holders of the administrative update-app capability.
// Permission infrastructure failures collapse to a denial (fail
// closed) rather than propagating.
func (g *Gate) CanEdit(ctx context.Context, t types.StoredTemplate, actor host.Identity) bool {
	if !t.LockedForOthers {
		return true
	}
	if t.Author.ID != "" && t.Author.ID == actor.ID() {
		return true
	}
	granted, err := actor.HasPermission(ctx, host.CapUpdateApp, nil)
	if err != nil {
		return false
	}
	return granted
}

// CanAccessProject decides whether the acting identity may touch a
// template pinned to the given project. Global templates (empty
// project ID) are always accessible; unknown projects and failed
// capability checks deny.
func (g *Gate) CanAccessProject(ctx context.Context, projectID string, actor host.Identity) bool {
	if projectID == "" {
		return true
	}
	project, err := g.projects.FindByKey(ctx, projectID)
	if err != nil || project == nil {
		return false
	}
	granted, err := actor.HasPermission(ctx, host.CapCreateArticle, project)
	if err != nil {
		return false
	}
	return granted
}
