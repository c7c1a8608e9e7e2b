package repository

// Key layout: one object per record at <tenant>/reservations/<id>.json.
// Sandbox restores land under a disjoint <tenant>/restore-sandbox/<sandbox>/
// namespace so rehearsal never collides with live keys. Prefixes are derived
// from the authenticated tenant id only, never taken verbatim from a caller.

const (
	reservationsSegment = "/reservations/"
	sandboxSegment      = "/restore-sandbox/"
	objectSuffix        = ".json"
)

// DefaultPrefix is the tenant's live data prefix.
func DefaultPrefix(tenantID string) string {
	return tenantID + reservationsSegment
}

// SandboxPrefix is an isolated rehearsal prefix for the given sandbox id.
func SandboxPrefix(tenantID, sandboxID string) string {
	return tenantID + sandboxSegment + sandboxID + reservationsSegment
}

// KeyFor derives the storage key for a record id under a target prefix.
func KeyFor(prefix, id string) string {
	return prefix + id + objectSuffix
}
