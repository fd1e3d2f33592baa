// Package responses renders API errors in a single JSON envelope.
package responses
