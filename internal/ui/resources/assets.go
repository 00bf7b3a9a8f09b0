// Package resources serves the static assets of the store page.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Stylesheet is the store page stylesheet, relative to the static directory.
const Stylesheet = "store.css"
