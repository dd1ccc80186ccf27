// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// A statistics pass is built from three parts: the Initializer ensures the
// page has a skeleton, the Synchroniser splices one row into each matched
// section, and StatsService commits the result once and records history.
package services
