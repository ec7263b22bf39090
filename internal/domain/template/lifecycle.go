package template

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/shared/errs"
	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// The host renders template content as markdown with inline HTML, so
// content keeps user-generated markup minus anything active; name and
// summary are plain text.
var (
	textPolicy    = bluemonday.StrictPolicy()
	contentPolicy = bluemonday.UGCPolicy()
)

// ListActive returns the visible active templates. Before the first
// import the predefined set is injected (minus trashed IDs); afterwards
// predefined copies live in the shared collection itself. projectsParam
// is "all", or a comma-separated allow list of project IDs ("" keeps
// only global templates).
func (s *Service) ListActive(ctx context.Context, actor host.Identity, projectsParam string) ([]types.TemplateView, error) {
	snap := s.loadPurged(s.storeFor(actor), false)
	deleted := idSet(snap.DeletedShared, snap.DeletedPrivate)

	var all []types.StoredTemplate
	index := make(map[string]int)
	add := func(t types.StoredTemplate, private bool) {
		if _, trashed := deleted[t.ID]; trashed {
			return
		}
		t.IsPrivate = private
		if i, ok := index[t.ID]; ok {
			all[i] = t
			return
		}
		index[t.ID] = len(all)
		all = append(all, t)
	}

	if !snap.InitialImportDone {
		for _, t := range Predefined() {
			add(t, false)
		}
	}
	for _, t := range snap.Shared {
		add(t, false)
	}
	for _, t := range snap.Private {
		add(t, true)
	}

	visible := s.filterAccessible(ctx, all, actor, projectsParam)
	return s.toViews(ctx, visible, actor), nil
}

// ListDeleted returns the visible trash entries.
func (s *Service) ListDeleted(ctx context.Context, actor host.Identity, projectsParam string) ([]types.TemplateView, error) {
	snap := s.loadPurged(s.storeFor(actor), false)

	all := make([]types.StoredTemplate, 0, len(snap.DeletedShared)+len(snap.DeletedPrivate))
	for _, t := range snap.DeletedShared {
		t.IsPrivate = false
		all = append(all, t)
	}
	for _, t := range snap.DeletedPrivate {
		t.IsPrivate = true
		all = append(all, t)
	}

	visible := s.filterAccessible(ctx, all, actor, projectsParam)
	return s.toViews(ctx, visible, actor), nil
}

func (s *Service) filterAccessible(ctx context.Context, list []types.StoredTemplate, actor host.Identity, projectsParam string) []types.StoredTemplate {
	visible := make([]types.StoredTemplate, 0, len(list))
	for _, t := range list {
		if !s.gate.CanAccessProject(ctx, t.ProjectID, actor) {
			continue
		}
		if !projectAllowed(t.ProjectID, projectsParam) {
			continue
		}
		visible = append(visible, t)
	}
	return visible
}

func projectAllowed(projectID, projectsParam string) bool {
	if projectsParam == "all" {
		return true
	}
	if projectID == "" {
		return true
	}
	for _, key := range strings.Split(projectsParam, ",") {
		if key == projectID {
			return true
		}
	}
	return false
}

// Upsert creates or updates a template, keyed by the presence of an
// ID. New templates are auto-added to the creator's favorites.
func (s *Service) Upsert(ctx context.Context, actor host.Identity, input types.TemplateInput) (types.TemplateView, error) {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)

	var old *types.StoredTemplate
	if input.ID != "" {
		if found := findByID(snap.Shared, input.ID); found != nil {
			old = found
		} else if found := findByID(snap.Private, input.ID); found != nil {
			old = found
		}
	}

	if old != nil && old.ProjectID != "" && !s.gate.CanAccessProject(ctx, old.ProjectID, actor) {
		return types.TemplateView{}, errs.Permission("no access to the project of this template")
	}
	if input.ProjectID != "" && !s.gate.CanAccessProject(ctx, input.ProjectID, actor) {
		return types.TemplateView{}, errs.Permission("no access to the selected project")
	}
	if old != nil && !s.gate.CanEdit(ctx, *old, actor) {
		return types.TemplateView{}, errs.Permission("no permission to edit this template")
	}

	t := s.prepareStored(input, old, actor)

	if old == nil {
		favs := st.favorites()
		if !contains(favs, t.ID) {
			if err := st.setFavorites(append(favs, t.ID)); err != nil {
				return types.TemplateView{}, err
			}
		}
	}

	shared := removeByID(snap.Shared, t.ID)
	private := removeByID(snap.Private, t.ID)
	if t.IsPrivate {
		private = append(private, t)
	} else {
		shared = append(shared, t)
	}

	if err := st.save(partial{Shared: &shared, Private: &private}); err != nil {
		return types.TemplateView{}, err
	}
	return s.toView(ctx, t, actor), nil
}

// prepareStored builds the persisted record from an explicit field
// allow-list, so computed response fields can never be written back.
// CreatedAt, UsageCount, and Author stick to the prior stored values on
// edit; fresh defaults apply on create.
func (s *Service) prepareStored(input types.TemplateInput, old *types.StoredTemplate, actor host.Identity) types.StoredTemplate {
	isNew := old == nil
	var base types.StoredTemplate
	if old != nil {
		base = *old
	}

	t := types.StoredTemplate{
		ID:              input.ID,
		Name:            textPolicy.Sanitize(input.Name),
		Summary:         textPolicy.Sanitize(input.Summary),
		Content:         contentPolicy.Sanitize(input.Content),
		IsPrivate:       input.IsPrivate,
		LockedForOthers: input.LockedForOthers,
		ProjectID:       input.ProjectID,
	}
	if t.ID == "" {
		t.ID = s.newID()
	}

	switch {
	case base.CreatedAt != 0:
		t.CreatedAt = base.CreatedAt
	case input.CreatedAt != nil && *input.CreatedAt != 0:
		t.CreatedAt = *input.CreatedAt
	default:
		t.CreatedAt = s.nowMillis()
	}

	switch {
	case !isNew:
		t.UsageCount = base.UsageCount
	case input.UsageCount != nil:
		t.UsageCount = *input.UsageCount
	}

	if isNew {
		t.Author = authorSnapshot(actor)
	} else {
		t.Author = base.Author
	}
	return t
}

// Delete soft-deletes one template: it is stamped and moved into the
// trash list matching its privacy. Predefined templates that were
// never copied into the shared collection can be trashed directly.
func (s *Service) Delete(ctx context.Context, actor host.Identity, id string) error {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)

	t := findByID(snap.Shared, id)
	if t == nil {
		t = findByID(snap.Private, id)
	}
	if t == nil {
		t = findByID(Predefined(), id)
	}
	if t == nil {
		return errs.NotFound("template not found")
	}

	if t.ProjectID != "" && !s.gate.CanAccessProject(ctx, t.ProjectID, actor) {
		return errs.Permission("no access to the project of this template")
	}
	if !s.gate.CanEdit(ctx, *t, actor) {
		return errs.Permission("no permission to delete this template")
	}

	deletedItem := *t
	deletedItem.DeletedAt = s.nowMillis()

	shared := removeByID(snap.Shared, id)
	private := removeByID(snap.Private, id)
	deletedShared := snap.DeletedShared
	deletedPrivate := snap.DeletedPrivate
	if t.IsPrivate {
		deletedPrivate = append(deletedPrivate, deletedItem)
	} else {
		deletedShared = append(deletedShared, deletedItem)
	}

	return st.save(partial{
		Shared:         &shared,
		Private:        &private,
		DeletedShared:  &deletedShared,
		DeletedPrivate: &deletedPrivate,
	})
}

// BulkDelete soft-deletes every template in ids the actor may edit.
// Per-item gate failures silently shrink the batch; an empty surviving
// batch is a permission error. Qualifying predefined templates not
// already covered by the shared/private passes are trashed as copies.
// Returns the number of templates moved to trash.
func (s *Service) BulkDelete(ctx context.Context, actor host.Identity, ids []string) (int, error) {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)
	requested := stringSet(ids)
	now := s.nowMillis()

	deletable := func(t types.StoredTemplate) bool {
		if _, ok := requested[t.ID]; !ok {
			return false
		}
		return s.gate.CanAccessProject(ctx, t.ProjectID, actor) && s.gate.CanEdit(ctx, t, actor)
	}

	var toDelShared, toDelPrivate, toDelPredefined []types.StoredTemplate
	for _, t := range snap.Shared {
		if deletable(t) {
			toDelShared = append(toDelShared, t)
		}
	}
	for _, t := range snap.Private {
		if deletable(t) {
			toDelPrivate = append(toDelPrivate, t)
		}
	}
	covered := idSet(toDelShared, toDelPrivate)
	for _, t := range Predefined() {
		if _, ok := covered[t.ID]; ok {
			continue
		}
		if deletable(t) {
			toDelPredefined = append(toDelPredefined, t)
		}
	}

	if len(toDelShared) == 0 && len(toDelPrivate) == 0 && len(toDelPredefined) == 0 {
		return 0, errs.Permission("no templates found or no permission to delete them")
	}

	removed := idSet(toDelShared, toDelPrivate)
	shared := make([]types.StoredTemplate, 0, len(snap.Shared))
	for _, t := range snap.Shared {
		if _, ok := removed[t.ID]; !ok {
			shared = append(shared, t)
		}
	}
	private := make([]types.StoredTemplate, 0, len(snap.Private))
	for _, t := range snap.Private {
		if _, ok := removed[t.ID]; !ok {
			private = append(private, t)
		}
	}

	deletedShared := snap.DeletedShared
	for _, t := range append(toDelShared, toDelPredefined...) {
		t.DeletedAt = now
		t.IsPrivate = false
		deletedShared = append(deletedShared, t)
	}
	deletedPrivate := snap.DeletedPrivate
	for _, t := range toDelPrivate {
		t.DeletedAt = now
		t.IsPrivate = true
		deletedPrivate = append(deletedPrivate, t)
	}

	if err := st.save(partial{
		Shared:         &shared,
		Private:        &private,
		DeletedShared:  &deletedShared,
		DeletedPrivate: &deletedPrivate,
	}); err != nil {
		return 0, err
	}
	return len(toDelShared) + len(toDelPrivate) + len(toDelPredefined), nil
}

// Restore moves one trash entry back to its active list with the
// deletion stamp cleared.
func (s *Service) Restore(ctx context.Context, actor host.Identity, id string) (types.TemplateView, error) {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)

	t := findByID(snap.DeletedShared, id)
	if t == nil {
		t = findByID(snap.DeletedPrivate, id)
	}
	if t == nil {
		return types.TemplateView{}, errs.NotFound("template not found in trash")
	}

	if t.ProjectID != "" && !s.gate.CanAccessProject(ctx, t.ProjectID, actor) {
		return types.TemplateView{}, errs.Permission("no access to the project of this template")
	}
	if !s.gate.CanEdit(ctx, *t, actor) {
		return types.TemplateView{}, errs.Permission("no permission to restore this template")
	}

	restored := *t
	restored.DeletedAt = 0

	shared := snap.Shared
	private := snap.Private
	if restored.IsPrivate {
		private = append(private, restored)
	} else {
		shared = append(shared, restored)
	}
	deletedShared := removeByID(snap.DeletedShared, id)
	deletedPrivate := removeByID(snap.DeletedPrivate, id)

	if err := st.save(partial{
		Shared:         &shared,
		Private:        &private,
		DeletedShared:  &deletedShared,
		DeletedPrivate: &deletedPrivate,
	}); err != nil {
		return types.TemplateView{}, err
	}
	return s.toView(ctx, restored, actor), nil
}

// BulkRestore mirrors BulkDelete's per-item filtering for the trash
// lists. Returns the number of templates restored.
func (s *Service) BulkRestore(ctx context.Context, actor host.Identity, ids []string) (int, error) {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)
	requested := stringSet(ids)

	restorable := func(t types.StoredTemplate) bool {
		if _, ok := requested[t.ID]; !ok {
			return false
		}
		return s.gate.CanAccessProject(ctx, t.ProjectID, actor) && s.gate.CanEdit(ctx, t, actor)
	}

	var toResShared, toResPrivate []types.StoredTemplate
	for _, t := range snap.DeletedShared {
		if restorable(t) {
			toResShared = append(toResShared, t)
		}
	}
	for _, t := range snap.DeletedPrivate {
		if restorable(t) {
			toResPrivate = append(toResPrivate, t)
		}
	}

	if len(toResShared) == 0 && len(toResPrivate) == 0 {
		return 0, errs.Permission("no templates found in trash or no permission to restore them")
	}

	restored := idSet(toResShared, toResPrivate)
	shared := snap.Shared
	for _, t := range toResShared {
		t.DeletedAt = 0
		shared = append(shared, t)
	}
	private := snap.Private
	for _, t := range toResPrivate {
		t.DeletedAt = 0
		private = append(private, t)
	}

	deletedShared := make([]types.StoredTemplate, 0, len(snap.DeletedShared))
	for _, t := range snap.DeletedShared {
		if _, ok := restored[t.ID]; !ok {
			deletedShared = append(deletedShared, t)
		}
	}
	deletedPrivate := make([]types.StoredTemplate, 0, len(snap.DeletedPrivate))
	for _, t := range snap.DeletedPrivate {
		if _, ok := restored[t.ID]; !ok {
			deletedPrivate = append(deletedPrivate, t)
		}
	}

	if err := st.save(partial{
		Shared:         &shared,
		Private:        &private,
		DeletedShared:  &deletedShared,
		DeletedPrivate: &deletedPrivate,
	}); err != nil {
		return 0, err
	}
	return len(toResShared) + len(toResPrivate), nil
}

// PermanentDelete drops one trash entry entirely, no tombstone, and
// removes it from the actor's favorites.
func (s *Service) PermanentDelete(ctx context.Context, actor host.Identity, id string) error {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)

	t := findByID(snap.DeletedShared, id)
	if t == nil {
		t = findByID(snap.DeletedPrivate, id)
	}
	if t == nil {
		return errs.NotFound("template not found")
	}

	if t.ProjectID != "" && !s.gate.CanAccessProject(ctx, t.ProjectID, actor) {
		return errs.Permission("no access to the project of this template")
	}
	if !s.gate.CanEdit(ctx, *t, actor) {
		return errs.Permission("no permission to permanently delete this template")
	}

	favs := st.favorites()
	if contains(favs, id) {
		if err := st.setFavorites(removeString(favs, id)); err != nil {
			return err
		}
	}

	deletedShared := removeByID(snap.DeletedShared, id)
	deletedPrivate := removeByID(snap.DeletedPrivate, id)
	return st.save(partial{
		DeletedShared:  &deletedShared,
		DeletedPrivate: &deletedPrivate,
	})
}

// ImportPredefined copies every predefined template whose name is not
// already taken (case-insensitive) among active shared templates.
// Copies get fresh IDs and creation stamps, distinct from the
// ID-deduplicated automatic seeding. Returns the number imported.
func (s *Service) ImportPredefined(ctx context.Context, actor host.Identity) (int, error) {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)

	existing := make(map[string]struct{}, len(snap.Shared))
	for _, t := range snap.Shared {
		existing[strings.ToLower(t.Name)] = struct{}{}
	}

	shared := snap.Shared
	added := 0
	for _, t := range Predefined() {
		if _, taken := existing[strings.ToLower(t.Name)]; taken {
			continue
		}
		t.ID = s.newID()
		t.CreatedAt = s.nowMillis()
		t.IsPrivate = false
		shared = append(shared, t)
		added++
	}

	if added > 0 {
		done := true
		if err := st.save(partial{Shared: &shared, InitialImportDone: &done}); err != nil {
			return 0, err
		}
	}
	return added, nil
}

// IncrementUsage bumps the usage counter of the first active template
// matching the ID. The read is write-capable, so it purges expired
// trash and seeds a fresh store even when the ID is missing or matches
// nothing; the counter itself is persisted only when it changed.
func (s *Service) IncrementUsage(actor host.Identity, templateID string) error {
	st := s.storeFor(actor)
	snap := s.loadPurged(st, true)
	if templateID == "" {
		return nil
	}

	changed := false
	bump := func(list []types.StoredTemplate) []types.StoredTemplate {
		for i := range list {
			if list[i].ID == templateID && !changed {
				list[i].UsageCount++
				changed = true
			}
		}
		return list
	}

	shared := bump(snap.Shared)
	private := bump(snap.Private)
	if !changed {
		return nil
	}
	return st.save(partial{Shared: &shared, Private: &private})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func stringSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s] = struct{}{}
	}
	return set
}
