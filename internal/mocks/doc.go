// Package mocks provides hand-written test doubles for service interfaces.
// Each mock takes optional function fields for custom behavior and records
// the calls it receives.
package mocks
