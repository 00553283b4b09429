// Package testutil provides deterministic helpers and content repository
// fixtures shared by tests and the scenario harness.
package testutil
