package template

import (
	"github.com/trackerext/article-templates/backend/internal/shared/types"
	"github.com/trackerext/article-templates/backend/internal/storage"
)

// Property keys. Shared collections live in the global scope,
// per-identity collections and preferences in the user scope.
const (
	keyTemplates         = "templates"
	keyDeletedTemplates  = "deletedTemplates"
	keyInitialImportDone = "initialImportDone"
	keyFavorites         = "favorites"
	keyShowFavoritesOnly = "showFavoritesOnly"
	keyAuthorFilter      = "authorFilter"
	keyProjectFilter     = "projectFilter"
)

// snapshot is one synchronous read of every collection the engine
// cares about. Each key parses independently: a corrupt value degrades
// that key to its empty default, never the whole snapshot.
type snapshot struct {
	Shared            []types.StoredTemplate
	Private           []types.StoredTemplate
	DeletedShared     []types.StoredTemplate
	DeletedPrivate    []types.StoredTemplate
	InitialImportDone bool
	Prefs             types.Preferences
}

// partial selects which fields a save touches. Nil fields are left
// untouched in storage so partial updates never clobber unrelated keys.
type partial struct {
	Shared            *[]types.StoredTemplate
	Private           *[]types.StoredTemplate
	DeletedShared     *[]types.StoredTemplate
	DeletedPrivate    *[]types.StoredTemplate
	InitialImportDone *bool
}

// store is the typed accessor over the key-value facade, bound to one
// acting identity.
type store struct {
	kv *storage.Store
}

func newStore(kv *storage.Store) *store {
	return &store{kv: kv}
}

func (s *store) load() snapshot {
	return snapshot{
		Shared:            s.templateList(storage.ScopeGlobal, keyTemplates),
		Private:           s.templateList(storage.ScopeUser, keyTemplates),
		DeletedShared:     s.templateList(storage.ScopeGlobal, keyDeletedTemplates),
		DeletedPrivate:    s.templateList(storage.ScopeUser, keyDeletedTemplates),
		InitialImportDone: s.flag(storage.ScopeGlobal, keyInitialImportDone),
		Prefs: types.Preferences{
			Favorites:         s.stringList(keyFavorites),
			ShowFavoritesOnly: s.flag(storage.ScopeUser, keyShowFavoritesOnly),
			AuthorFilter:      s.stringList(keyAuthorFilter),
			ProjectFilter:     s.stringList(keyProjectFilter),
		},
	}
}

// save writes each present field as a full-collection JSON replace.
func (s *store) save(p partial) error {
	if p.Shared != nil {
		if err := s.setTemplateList(storage.ScopeGlobal, keyTemplates, *p.Shared); err != nil {
			return err
		}
	}
	if p.Private != nil {
		if err := s.setTemplateList(storage.ScopeUser, keyTemplates, *p.Private); err != nil {
			return err
		}
	}
	if p.DeletedShared != nil {
		if err := s.setTemplateList(storage.ScopeGlobal, keyDeletedTemplates, *p.DeletedShared); err != nil {
			return err
		}
	}
	if p.DeletedPrivate != nil {
		if err := s.setTemplateList(storage.ScopeUser, keyDeletedTemplates, *p.DeletedPrivate); err != nil {
			return err
		}
	}
	if p.InitialImportDone != nil {
		if err := s.setFlag(storage.ScopeGlobal, keyInitialImportDone, *p.InitialImportDone); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) favorites() []string {
	return s.stringList(keyFavorites)
}

func (s *store) setFavorites(ids []string) error {
	return s.setStringList(keyFavorites, ids)
}

func (s *store) showFavoritesOnly() bool {
	return s.flag(storage.ScopeUser, keyShowFavoritesOnly)
}

func (s *store) setShowFavoritesOnly(val bool) error {
	return s.setFlag(storage.ScopeUser, keyShowFavoritesOnly, val)
}

func (s *store) authorFilter() []string {
	return s.stringList(keyAuthorFilter)
}

func (s *store) setAuthorFilter(ids []string) error {
	return s.setStringList(keyAuthorFilter, ids)
}

func (s *store) projectFilter() []string {
	return s.stringList(keyProjectFilter)
}

func (s *store) setProjectFilter(ids []string) error {
	return s.setStringList(keyProjectFilter, ids)
}

func (s *store) templateList(scope storage.Scope, key string) []types.StoredTemplate {
	list := []types.StoredTemplate{}
	raw, ok := s.kv.Get(scope, key)
	storage.DecodeJSON(raw, ok, &list)
	return list
}

func (s *store) setTemplateList(scope storage.Scope, key string, list []types.StoredTemplate) error {
	encoded, err := storage.EncodeJSON(list)
	if err != nil {
		return err
	}
	return s.kv.Set(scope, key, encoded)
}

func (s *store) stringList(key string) []string {
	list := []string{}
	raw, ok := s.kv.Get(storage.ScopeUser, key)
	storage.DecodeJSON(raw, ok, &list)
	return list
}

func (s *store) setStringList(key string, list []string) error {
	if list == nil {
		list = []string{}
	}
	encoded, err := storage.EncodeJSON(list)
	if err != nil {
		return err
	}
	return s.kv.Set(storage.ScopeUser, key, encoded)
}

// Flags are stored as the strings "true"/"false"; anything else reads
// as false.
func (s *store) flag(scope storage.Scope, key string) bool {
	raw, _ := s.kv.Get(scope, key)
	return raw == "true"
}

func (s *store) setFlag(scope storage.Scope, key string, val bool) error {
	str := "false"
	if val {
		str = "true"
	}
	return s.kv.Set(scope, key, str)
}
