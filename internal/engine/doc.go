// Package engine is the request pipeline: it turns GraphQL request text into
// compiled query IR for every root field.
//
// Compile parses the request with the selection adapter, then dispatches
// each root field. Entity root fields compile through
// compiler.ParseOperation. node(id:) decodes the global id, picks the
// addressable entity it names and compiles through
// compiler.ParseGlobalNodeOperation; an id naming no such entity yields a
// RootOperation with a nil Read, which the executor resolves to null.
//
// Every request gets a request id (UUIDv7 by default) that appears in logs
// and results. Compile outcomes are recorded into an optional metrics
// registry.
//
// The engine never executes anything. Its output is handed to a query
// builder; its errors are rendered for clients by FormatError.
package engine
