// Package core provides low-level PDF parsing primitives and object types.
//
// # Object Types
//
//   - [Null], [Bool], [Int], [Real], [String], [Name], [Array], [Dict]
//   - [Stream] - dictionary plus raw data, decoded on demand with [Stream.Decode]
//   - [IndirectRef] - reference to an indirect object
//
// # Parsing
//
// [Lexer] tokenizes an in-memory byte slice and can be repositioned, which
// lets the same buffer serve object lookups at arbitrary xref offsets.
// [Parser] builds objects from the token stream and reads indirect object
// definitions including streams.
//
// # Cross-Reference Data
//
// [LoadXRef] follows the startxref / Prev chain through classic xref tables
// and PDF 1.5 xref streams. When the chain is broken it falls back to
// [RebuildXRef], which scans the file for "n g obj" headers.
//
// # Object Streams
//
// [ObjectStream] resolves compressed objects stored in /Type /ObjStm streams.
package core
