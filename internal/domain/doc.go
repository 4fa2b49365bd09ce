// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/project, domain/todo,
// domain/user, domain/event). This root package holds sentinel errors, the
// typed error wrappers, and the clock abstraction shared across all entities.
package domain
