// Package simpleresource exposes a single storage root as a set of named,
// typed text resources with CRUD operations and per-format validation.
//
// A resource belongs to a family (plain, csv or json) chosen by the caller.
// The family decides how content is validated before it is written and how it
// is decoded when it is read. Storage is pluggable through the Backend
// interface; filesystem, memory, go-billy, S3 and Postgres implementations are
// provided under the storage subpackages, and the shipped formats live in the
// format subpackage.
//
// Operation order
//
// Every mutating operation follows the same sequence: request validation,
// existence check, content validation, storage call. Existence is checked
// against the backend on every call and never cached, so an Update with
// invalid content against a missing name reports NotFound rather than
// UnsupportedContent.
package simpleresource
