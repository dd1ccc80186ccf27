// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Reads and publishes the stats page (MediaWiki or local files)
//   - MetricsProvider: Lists the family of wikis and fetches their statistics
//   - TemplateSource: Supplies the skeleton body text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Local run history. Without it, runs are not recorded.
//   - SchedulerStore: Scheduler state. Without it, the daemon starts fresh.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
