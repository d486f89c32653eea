// Package services contains metadata API clients.
//
// The [MetadataService] interface abstracts the lookup used by the enrichment
// engine; [SpotifyService] implements it against the Spotify Web API using the
// client-credentials grant (no user context is required for search and artist
// reads).
//
// The contract separates "no match" from failure: a search that completes with
// zero results returns (nil, nil), while transport and auth errors propagate
// to the caller uncaught. The client performs no retries or backoff of its
// own; pacing is the enrichment engine's responsibility.
package services
