// Package types holds the data shapes shared across the template
// engine: the persisted template record, its response view, the upsert
// input, and per-identity preferences.
//
// StoredTemplate and TemplateView are deliberately distinct types so
// that computed response fields can never leak into storage.
package types
