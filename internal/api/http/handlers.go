// Package http contains the Gin handlers for the template endpoint
// surface.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackerext/article-templates/backend/internal/api/middleware"
	"github.com/trackerext/article-templates/backend/internal/domain/pipeline"
	"github.com/trackerext/article-templates/backend/internal/domain/template"
	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/logging"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/monitoring"
	"github.com/trackerext/article-templates/backend/internal/shared/errs"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	templates *template.Service
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(templates *template.Service, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Handlers{
		templates: templates,
		metrics:   metrics,
		logger:    logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Article Templates Service (Go)",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// MetricsJSON reports aggregate request counters for dashboards that
// cannot scrape Prometheus.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	snap := h.metrics.Snapshot()
	avg := 0.0
	if snap.RequestCount > 0 {
		avg = snap.TotalDuration / float64(snap.RequestCount)
	}
	c.JSON(http.StatusOK, gin.H{
		"totalRequests":      snap.TotalRequests,
		"totalErrors":        snap.TotalErrors,
		"avgDurationSeconds": avg,
	})
}

// Settings reports the engine tunables the frontend needs.
func (h *Handlers) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"purgeIntervalDays": h.templates.PurgeIntervalDays(),
	})
}

func (h *Handlers) actor(c *gin.Context) (host.Identity, bool) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity on request"})
	}
	return actor, ok
}

func (h *Handlers) respondErr(c *gin.Context, op string, err error) {
	if h.metrics != nil {
		h.metrics.RecordTemplateOp(op, "error")
	}
	c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
}

func (h *Handlers) recordOK(op string) {
	if h.metrics != nil {
		h.metrics.RecordTemplateOp(op, "ok")
	}
}

// prefSaver adapts the per-actor preference setters to the filter
// pipeline's reset hook.
type prefSaver struct {
	svc   *template.Service
	actor host.Identity
}

func (s prefSaver) SetAuthorFilter(ids []string) error {
	return s.svc.SetAuthorFilter(s.actor, ids)
}

func (s prefSaver) SetProjectFilter(ids []string) error {
	return s.svc.SetProjectFilter(s.actor, ids)
}

func (h *Handlers) pipelineParams(c *gin.Context, view pipeline.View, actor host.Identity) pipeline.Params {
	sortBy := pipeline.SortKey(c.Query("sortBy"))
	if sortBy != pipeline.SortByAuthor {
		sortBy = pipeline.SortByName
	}
	return pipeline.Params{
		View:       view,
		Text:       c.Query("filterText"),
		SortBy:     sortBy,
		Descending: c.Query("desc") == "true",
		Prefs:      h.templates.Preferences(actor),
	}
}

// ListTemplates returns the visible active templates after filters and
// sort.
func (h *Handlers) ListTemplates(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	list, err := h.templates.ListActive(c.Request.Context(), actor, c.Query("projects"))
	if err != nil {
		h.respondErr(c, "list", err)
		return
	}

	result, err := pipeline.Derive(list, h.pipelineParams(c, pipeline.ViewActive, actor), prefSaver{h.templates, actor})
	if err != nil {
		h.respondErr(c, "list", err)
		return
	}

	h.recordOK("list")
	c.JSON(http.StatusOK, gin.H{
		"templates":    result.Visible,
		"filtersReset": result.FiltersReset,
	})
}

// ListDeletedTemplates returns the visible trash entries after filters
// and sort.
func (h *Handlers) ListDeletedTemplates(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	list, err := h.templates.ListDeleted(c.Request.Context(), actor, c.Query("projects"))
	if err != nil {
		h.respondErr(c, "list-deleted", err)
		return
	}

	result, err := pipeline.Derive(list, h.pipelineParams(c, pipeline.ViewTrash, actor), prefSaver{h.templates, actor})
	if err != nil {
		h.respondErr(c, "list-deleted", err)
		return
	}

	h.recordOK("list-deleted")
	c.JSON(http.StatusOK, gin.H{
		"templates":    result.Visible,
		"filtersReset": result.FiltersReset,
	})
}

// UpsertTemplate creates or updates a template.
func (h *Handlers) UpsertTemplate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var input types.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template payload"})
		return
	}

	view, err := h.templates.Upsert(c.Request.Context(), actor, input)
	if err != nil {
		h.respondErr(c, "upsert", err)
		return
	}

	h.recordOK("upsert")
	c.JSON(http.StatusOK, view)
}

// DeleteTemplate soft-deletes one template.
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if err := h.templates.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondErr(c, "delete", err)
		return
	}

	h.recordOK("delete")
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteTemplates soft-deletes every requested template the actor
// may edit.
func (h *Handlers) BulkDeleteTemplates(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	count, err := h.templates.BulkDelete(c.Request.Context(), actor, req.IDs)
	if err != nil {
		h.respondErr(c, "bulk-delete", err)
		return
	}

	h.recordOK("bulk-delete")
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// RestoreTemplate moves one trash entry back to its active list.
func (h *Handlers) RestoreTemplate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	view, err := h.templates.Restore(c.Request.Context(), actor, id)
	if err != nil {
		h.respondErr(c, "restore", err)
		return
	}

	h.recordOK("restore")
	c.JSON(http.StatusOK, view)
}

// BulkRestoreTemplates restores every requested trash entry the actor
// may edit.
func (h *Handlers) BulkRestoreTemplates(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	count, err := h.templates.BulkRestore(c.Request.Context(), actor, req.IDs)
	if err != nil {
		h.respondErr(c, "bulk-restore", err)
		return
	}

	h.recordOK("bulk-restore")
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// PermanentDeleteTemplate drops one trash entry entirely.
func (h *Handlers) PermanentDeleteTemplate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if err := h.templates.PermanentDelete(c.Request.Context(), actor, id); err != nil {
		h.respondErr(c, "permanent-delete", err)
		return
	}

	h.recordOK("permanent-delete")
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// ImportPredefinedTemplates copies built-in templates not already
// present by name.
func (h *Handlers) ImportPredefinedTemplates(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	count, err := h.templates.ImportPredefined(c.Request.Context(), actor)
	if err != nil {
		h.respondErr(c, "import-predefined", err)
		return
	}

	h.recordOK("import-predefined")
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": count})
}

// CreateDraft instantiates an article draft from a template.
func (h *Handlers) CreateDraft(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req template.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft payload"})
		return
	}

	article, err := h.templates.CreateDraft(c.Request.Context(), actor, req)
	if err != nil {
		h.respondErr(c, "create-draft", err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncDraftsCreated()
	}
	h.recordOK("create-draft")
	c.JSON(http.StatusOK, article)
}

// ArticleData returns the summary and content of an existing article.
func (h *Handlers) ArticleData(c *gin.Context) {
	article, err := h.templates.ArticleData(c.Request.Context(), c.Query("articleId"))
	if err != nil {
		h.respondErr(c, "article-data", err)
		return
	}

	h.recordOK("article-data")
	c.JSON(http.StatusOK, gin.H{
		"summary": article.Summary,
		"content": article.Content,
	})
}

// UserPreferences returns the actor's view settings.
func (h *Handlers) UserPreferences(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.templates.Preferences(actor))
}

type authorFilterRequest struct {
	AuthorIDs []string `json:"authorIds"`
}

// SetAuthorFilter replaces the author filter selection.
func (h *Handlers) SetAuthorFilter(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req authorFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter payload"})
		return
	}

	if req.AuthorIDs == nil {
		req.AuthorIDs = []string{}
	}
	if err := h.templates.SetAuthorFilter(actor, req.AuthorIDs); err != nil {
		h.respondErr(c, "author-filter", err)
		return
	}

	h.recordOK("author-filter")
	c.JSON(http.StatusOK, gin.H{"authorFilter": req.AuthorIDs})
}

type projectFilterRequest struct {
	ProjectIDs []string `json:"projectIds"`
}

// SetProjectFilter replaces the project filter selection.
func (h *Handlers) SetProjectFilter(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req projectFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter payload"})
		return
	}

	if req.ProjectIDs == nil {
		req.ProjectIDs = []string{}
	}
	if err := h.templates.SetProjectFilter(actor, req.ProjectIDs); err != nil {
		h.respondErr(c, "project-filter", err)
		return
	}

	h.recordOK("project-filter")
	c.JSON(http.StatusOK, gin.H{"projectFilter": req.ProjectIDs})
}

// ToggleFavorite flips one template in the actor's favorites.
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	favorites, err := h.templates.ToggleFavorite(actor, id)
	if err != nil {
		h.respondErr(c, "toggle-favorite", err)
		return
	}

	h.recordOK("toggle-favorite")
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// ToggleShowFavorites flips the favorites-only listing flag.
func (h *Handlers) ToggleShowFavorites(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	next := !h.templates.Preferences(actor).ShowFavoritesOnly
	if err := h.templates.SetShowFavoritesOnly(actor, next); err != nil {
		h.respondErr(c, "toggle-show-favorites", err)
		return
	}

	h.recordOK("toggle-show-favorites")
	c.JSON(http.StatusOK, gin.H{"showFavoritesOnly": next})
}
