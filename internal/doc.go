// Package internal contains the implementation packages of the goa CLI.
//
// # Package Organization
//
//   - pathspec: route and component paths, and the placement-rule table
//     that maps them onto the project tree and back
//   - project: project root discovery, config.json settings and Layout
//   - resolver: existence checks before create and delete
//   - scaffolding: file templates, atomic writes, pruning and main.go
//     route registration
//   - scanner: rebuilds the route and component inventory from disk
//   - update: version feed check, check schedule and binary self-update
//   - watcher: debounced fsnotify watching for "project list --watch"
//   - config: CLI settings (.goa.yml, GOA_* variables, flags)
//   - errors: the error taxonomy and exit codes
//   - logging: slog-backed structured logging
//   - version: build information
//
// The filesystem is the only source of truth. Nothing is cached between
// invocations; the scanner derives every entry with the same placement
// rules the generator writes with.
package internal
