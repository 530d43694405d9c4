// Package scripted provides deterministic input and arena adapters for headless
// matches and tests.
package scripted
