package template

import (
	"go.uber.org/zap"

	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

// loadPurged reads a snapshot with expired trash entries dropped.
//
// Purge results always apply to the returned snapshot. They are
// persisted only on write-capable reads, and only when a trash list
// actually shrank, so pure reads never amplify writes. The first
// write-capable read also seeds the shared collection with predefined
// templates (deduplicated by ID) and sets the import flag in the same
// combined save.
func (s *Service) loadPurged(st *store, writeCapable bool) snapshot {
	snap := st.load()
	retention := s.retentionMillis()
	now := s.nowMillis()

	purge := func(list []types.StoredTemplate) []types.StoredTemplate {
		kept := make([]types.StoredTemplate, 0, len(list))
		for _, t := range list {
			if t.DeletedAt != 0 && now-t.DeletedAt < retention {
				kept = append(kept, t)
			}
		}
		return kept
	}

	purgedShared := purge(snap.DeletedShared)
	purgedPrivate := purge(snap.DeletedPrivate)
	if s.observer != nil {
		dropped := len(snap.DeletedShared) - len(purgedShared) +
			len(snap.DeletedPrivate) - len(purgedPrivate)
		s.observer.AddTemplatesPurged(dropped)
	}

	finalShared := snap.Shared
	importDone := snap.InitialImportDone

	if writeCapable {
		if !importDone {
			existing := idSet(snap.Shared)
			for _, t := range Predefined() {
				if _, ok := existing[t.ID]; !ok {
					finalShared = append(finalShared, t)
				}
			}
			importDone = true
			if err := st.save(partial{
				Shared:            &finalShared,
				DeletedShared:     &purgedShared,
				DeletedPrivate:    &purgedPrivate,
				InitialImportDone: &importDone,
			}); err != nil {
				s.logger.Warn("failed to persist seeded snapshot", zap.Error(err))
			} else {
				s.logger.Info("seeded shared collection with predefined templates",
					zap.Int("shared", len(finalShared)))
			}
		} else if len(purgedShared) != len(snap.DeletedShared) || len(purgedPrivate) != len(snap.DeletedPrivate) {
			if err := st.save(partial{
				DeletedShared:  &purgedShared,
				DeletedPrivate: &purgedPrivate,
			}); err != nil {
				s.logger.Warn("failed to persist purged trash", zap.Error(err))
			}
		}
	}

	snap.Shared = finalShared
	snap.DeletedShared = purgedShared
	snap.DeletedPrivate = purgedPrivate
	snap.InitialImportDone = importDone
	return snap
}
