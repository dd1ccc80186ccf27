// Package mediawiki talks to a family of MediaWiki wikis through the
// action API (api.php).
//
// # Components
//
//   - Family: maps site prefixes to api.php endpoints and hands out clients
//   - Client: JSON requests, retries and bot-password login for one wiki
//   - PageStore: reads and edits the stats page, implementing [driven.DocumentStore]
//   - StatsProvider: reads siteinfo statistics, implementing [driven.MetricsProvider]
//
// # Authentication
//
// Statistics are public and are read anonymously. Edits need either a bot
// password (Special:BotPasswords), used to log in lazily before the first
// edit, or an owner-only OAuth 2 access token sent as a bearer header.
//
// # Rate Limiting
//
// Every client of a family shares one [RateLimiter]. Calls are spaced by the
// configured delay, and maxlag, ratelimited or HTTP 429 responses pause the
// whole family for the Retry-After interval. Reads are retried with
// exponential backoff; edits never are.
package mediawiki
