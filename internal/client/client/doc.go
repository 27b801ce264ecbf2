// Package client is the remote note gateway of the DevNotes client.
//
// # Overview
//
// Client is the transport-agnostic contract (List, Get, Upsert, Delete) the
// note cache and the editor talk to. HTTPClient implements it over the JSON
// HTTP API of the note store:
//
//	GET    /notes        -> []Note
//	GET    /notes/{id}   -> Note, 404 if absent
//	PUT    /notes        {id?, title, content} -> {id}
//	DELETE /notes/{id}   -> empty body
//
// # Error Handling
//
// Failures are reported with sentinel errors matched by errors.Is:
// ErrTransport (no response reached the store), ErrServer (the store answered
// with a failure status), ErrNotFound (404) and ErrValidation (400/422).
// Status failures are *StatusError values carrying the HTTP status and body.
// Deleting an id the store does not know is not an error.
//
// Nothing here retries; retry policy belongs to the caller.
package client
