// Package daemon enforces single-instance execution for the long-running
// framed processes and ties their lifecycle to a context.
package daemon
