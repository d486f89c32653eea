// Package repositories provides the persistence layer for the lookup cache.
//
// [LookupRepository] implements models.Repository[*models.CachedLookup] over
// SQLite, handling CRUD, soft deletes, and sequence generation.
// [LookupCacheAdapter] exposes the repository through the tasks.LookupCacher
// interface used by the enrichment engine.
package repositories
