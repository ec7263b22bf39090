package template

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/logging"
	"github.com/trackerext/article-templates/backend/internal/shared/id"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
	"github.com/trackerext/article-templates/backend/internal/storage"
)

// DefaultPurgeIntervalDays is the trash retention window when no
// configuration is supplied.
const DefaultPurgeIntervalDays = 7

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// Config tunes the template engine.
type Config struct {
	// PurgeIntervalDays is the trash retention window in days.
	PurgeIntervalDays int
}

// Service implements the template lifecycle engine: snapshot reads
// with transparent purge and seeding, the permission gate, and every
// mutating operation of the endpoint surface.
//
// Each operation runs to completion against the snapshot it read; the
// storage layer has no transactions, so overlapping requests keep
// last-write-wins semantics (an accepted limitation of the design).
type Service struct {
	backend  storage.Backend
	projects host.Projects
	articles host.Articles
	gate     *Gate
	logger   *logging.Logger

	purgeDays int
	nowMillis func() int64
	newID     func() string
	observer  Observer
}

// Observer receives purge counts for monitoring. Implementations must
// be cheap; it is called on the read path.
type Observer interface {
	AddTemplatesPurged(count int)
}

// NewService creates the engine.
func NewService(backend storage.Backend, projects host.Projects, articles host.Articles, logger *logging.Logger, cfg Config) *Service {
	days := cfg.PurgeIntervalDays
	if days <= 0 {
		days = DefaultPurgeIntervalDays
	}
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Service{
		backend:   backend,
		projects:  projects,
		articles:  articles,
		gate:      NewGate(projects),
		logger:    logger,
		purgeDays: days,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
		newID:     id.NewTemplateID,
	}
}

// WithClock overrides the epoch-millisecond clock. Used by tests to
// pin purge boundaries.
func (s *Service) WithClock(now func() int64) *Service {
	s.nowMillis = now
	return s
}

// WithIDGenerator overrides template ID generation.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.newID = gen
	return s
}

// WithMetrics attaches a monitoring observer.
func (s *Service) WithMetrics(o Observer) *Service {
	s.observer = o
	return s
}

// Gate exposes the permission gate for read-side filtering.
func (s *Service) Gate() *Gate {
	return s.gate
}

// PurgeIntervalDays reports the configured retention window.
func (s *Service) PurgeIntervalDays() int {
	return s.purgeDays
}

func (s *Service) retentionMillis() int64 {
	return int64(s.purgeDays) * millisPerDay
}

func (s *Service) storeFor(actor host.Identity) *store {
	return newStore(storage.Bind(s.backend, actor.ID()))
}

func authorSnapshot(actor host.Identity) types.Author {
	return types.Author{
		ID:       actor.ID(),
		Login:    actor.Login(),
		FullName: actor.FullName(),
		Email:    actor.Email(),
	}
}

// toView attaches the computed response fields. When the pinned
// project resolves, the view's project ID is normalized to the
// project's short name.
func (s *Service) toView(ctx context.Context, t types.StoredTemplate, actor host.Identity) types.TemplateView {
	view := types.TemplateView{StoredTemplate: t}
	if t.ProjectID != "" {
		project, err := s.projects.FindByKey(ctx, t.ProjectID)
		if err != nil {
			s.logger.Warn("project lookup failed while building view",
				zap.String("project_id", t.ProjectID), zap.Error(err))
		} else if project != nil {
			view.ProjectName = project.Name
			view.ProjectID = project.ShortName
		}
	}
	view.CanEdit = s.gate.CanEdit(ctx, t, actor)
	return view
}

func (s *Service) toViews(ctx context.Context, list []types.StoredTemplate, actor host.Identity) []types.TemplateView {
	views := make([]types.TemplateView, 0, len(list))
	for _, t := range list {
		views = append(views, s.toView(ctx, t, actor))
	}
	return views
}

func findByID(list []types.StoredTemplate, id string) *types.StoredTemplate {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func removeByID(list []types.StoredTemplate, id string) []types.StoredTemplate {
	out := make([]types.StoredTemplate, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func idSet(lists ...[]types.StoredTemplate) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, t := range list {
			set[t.ID] = struct{}{}
		}
	}
	return set
}
