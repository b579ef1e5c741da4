// Package preview implements watch mode: an initial build, a recursive
// filesystem watcher feeding a debounced single-worker rebuild loop, an
// optional periodic forced rebuild and an HTTP server for the output tree.
package preview
