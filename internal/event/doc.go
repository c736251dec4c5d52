// Package event defines the records flowing through the pipeline and the
// derivation of their identity key, canonical description, and entry title.
package event
