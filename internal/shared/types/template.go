package types

// Author is an identity snapshot captured when a template is created.
// It is never recomputed on update.
type Author struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// StoredTemplate is the persisted shape of a template. Computed fields
// (project name, per-viewer edit flag) never appear here; they belong
// to TemplateView and are attached only when producing a response.
type StoredTemplate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Summary         string `json:"summary"`
	Content         string `json:"content"`
	CreatedAt       int64  `json:"createdAt"`
	UsageCount      int    `json:"usageCount"`
	IsPrivate       bool   `json:"isPrivate"`
	LockedForOthers bool   `json:"lockedForOthers,omitempty"`
	ProjectID       string `json:"projectId,omitempty"`
	DeletedAt       int64  `json:"deletedAt,omitempty"`
	Author          Author `json:"author"`
}

// InTrash reports whether the template carries a deletion stamp.
func (t StoredTemplate) InTrash() bool {
	return t.DeletedAt != 0
}

// TemplateView is the response shape: the stored fields plus computed
// ones. The mapping in the domain layer is the only place views are
// built, and views are never written back to storage.
type TemplateView struct {
	StoredTemplate
	ProjectName string `json:"projectName,omitempty"`
	CanEdit     bool   `json:"canEdit"`
}

// TemplateInput is the upsert request body. CreatedAt and UsageCount
// are pointers so that an absent field can fall back to the prior
// stored value (or a fresh default) instead of regressing to zero.
type TemplateInput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Summary         string `json:"summary"`
	Content         string `json:"content"`
	CreatedAt       *int64 `json:"createdAt"`
	UsageCount      *int   `json:"usageCount"`
	IsPrivate       bool   `json:"isPrivate"`
	LockedForOthers bool   `json:"lockedForOthers"`
	ProjectID       string `json:"projectId"`
}
