// Package build drives a site build: it loads the content tree, resolves
// aliases, walks every node rendering pages and tables of contents, skips
// unchanged files using stored checksums, renders slide decks and finally
// writes the course index.
//
// A Builder is configured once with New and its With* options and can run
// many builds; each Execute call gets its own run state.
package build
