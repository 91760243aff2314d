// Package dataset loads read-only reference tables.
//
// A Source opens a table by name (a file in a data directory, or an object in an S3
// bucket); a Loader parses the opened stream into a Table according to the name's
// extension. Tables are never mutated after load. CachedSource optionally keeps parsed
// tables for a fixed TTL.
package dataset
