package template

import (
	"context"

	"go.uber.org/zap"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/shared/errs"
)

// DraftRequest carries the parameters for instantiating an article
// draft from a template.
type DraftRequest struct {
	TemplateID      string `json:"templateId"`
	Summary         string `json:"summary"`
	Content         string `json:"content"`
	ProjectID       string `json:"projectId"`
	ParentArticleID string `json:"parentArticleId"`
}

// CreateDraft instantiates an article draft in the given project and
// bumps the source template's usage counter. The counter bump is best
// effort; a failed bump never fails a created draft.
func (s *Service) CreateDraft(ctx context.Context, actor host.Identity, req DraftRequest) (*host.Article, error) {
	if req.ProjectID == "" {
		return nil, errs.Validation("projectId is required")
	}

	project, err := s.projects.FindByKey(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errs.NotFound("project %q not found", req.ProjectID)
	}

	granted, err := actor.HasPermission(ctx, host.CapCreateArticle, project)
	if err != nil || !granted {
		return nil, errs.Permission("no permission to create articles in project %q", req.ProjectID)
	}

	article, err := s.articles.CreateDraft(ctx, project, actor, host.DraftSpec{
		Summary:         req.Summary,
		Content:         req.Content,
		ParentArticleID: req.ParentArticleID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.IncrementUsage(actor, req.TemplateID); err != nil {
		s.logger.Warn("failed to bump template usage",
			zap.String("template_id", req.TemplateID), zap.Error(err))
	}
	return article, nil
}

// ArticleData resolves an article's summary, content, and parent for
// prefilling the template editor from an existing article.
func (s *Service) ArticleData(ctx context.Context, articleID string) (*host.Article, error) {
	if articleID == "" {
		return nil, errs.Validation("articleId is required")
	}
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, errs.NotFound("article %q not found", articleID)
	}
	return article, nil
}
