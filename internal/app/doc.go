// Package app provides the use cases and application services that
// orchestrate entity creation and mutation against the repository ports,
// publish domain events after successful state transitions, and adapt
// results to the DTO boundary consumed by inbound adapters.
package app
