// Package handlers contains the catalog HTTP handlers, one type per resource.
package handlers
