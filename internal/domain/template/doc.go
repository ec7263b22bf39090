// Package template implements the template lifecycle engine: shared
// and private collections over two-scope key-value storage, soft
// delete with retention-window purge, predefined seeding and import,
// permission gating, per-identity preferences, and draft creation
// against the host platform.
package template
