// Package component defines the lifecycle contract for infrastructure
// components and a registry that starts them in order and stops them in
// reverse, with per-component health reporting.
package component
