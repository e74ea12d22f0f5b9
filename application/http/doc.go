// Package http implements the HTTP/1.1 wire codec: parsing a request head
// and body straight off a byte stream, and serializing responses back into
// wire bytes. Higher-level request/response semantics live in the semantic
// subpackage; connection handling lives in actor/server.
package http
