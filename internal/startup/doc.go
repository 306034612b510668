// Package startup handles application initialization: environment
// configuration, directory validation, and the structured startup and
// shutdown log sequences.
package startup
