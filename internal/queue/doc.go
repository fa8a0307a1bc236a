// Package queue owns the acceleration request data model and the JSON file
// that holds pending requests between runs.
//
// The Store loads the whole document and writes it back only as a whole:
// Save replaces the file atomically (temp file plus rename), so readers see
// either the previous queue or the new one. Whether Save is called at all is
// the batch runner's decision; this package never rewrites the file on its
// own.
//
// Requests are preserved field-for-field, including keys this version does
// not know about, so a round-trip through Load and Save never drops data that
// upstream producers added.
package queue
