// Package catalog loads and queries the lab program catalog.
//
// A catalog document lists subjects, each holding program records, and an
// optional list of notes. Documents are read once from a file path or an
// http(s) URL in JSON or YAML form. Every program record is resolved at load
// time into a Source variant (empty, unified code, or html/css/js fragments)
// so that callers never re-inspect the raw optional fields.
//
// Lookups never fail loudly: a missing subject or program is reported with
// ok == false and callers treat the request as a no-op.
package catalog
