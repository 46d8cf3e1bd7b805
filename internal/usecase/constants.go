package usecase

import "time"

const (
	// DefaultQueryTimeout bounds a single call to the query boundary.
	DefaultQueryTimeout = 10 * time.Second

	// DefaultCacheTTL is how long fetched payloads stay cached.
	DefaultCacheTTL = 5 * time.Minute

	// reportCachePrefix namespaces cached payloads.
	reportCachePrefix = "report:"
)
