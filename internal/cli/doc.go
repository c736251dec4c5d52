// Package cli wires configuration, the calendar store, and the sync pipeline
// into the archery-sync command.
package cli
