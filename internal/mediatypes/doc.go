// Package mediatypes defines the media classification used across the
// indexing pipeline: the audio/video type enum, MIME-prefix based
// classification of generic attachments, and synthesized placeholder
// file names for attachments that arrive without one.
package mediatypes
