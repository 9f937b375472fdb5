// Package services holds cross-cutting helpers shared by the stage
// implementations: sentinel errors with status classification, and
// context keys used to thread item identifiers through logging.
package services
