package types

// Status is a type for the lifecycle status of a persisted resource.
// It tracks soft deletion and archival and is orthogonal to any
// domain-specific status an entity carries (e.g. invoice status).
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
