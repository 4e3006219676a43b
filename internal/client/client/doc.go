// Package client contains the CLI's side of the auth API.
//
// # Overview
//
//  1. A transport-agnostic contract (see the Client interface): Register,
//     Login, VerifyEmail, ResendOTP, VerifyUser and Ping.
//  2. A JSON-over-HTTP implementation (see HTTPClient). Each endpoint has an
//     explicit result type; responses missing required fields are rejected
//     with ErrMalformedResponse.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite file and applying embedded goose migrations.
//
// # Error Handling
//
// Errors fall into four classes, all matchable with errors.Is / errors.As:
//
//   - ErrValidation (or *ValidationError): rejected before any request.
//   - ErrUnauthorized: a 401 from the server.
//   - *ServerError: any other {success:false} response; Message is shown
//     to the user verbatim (see UserMessage).
//   - ErrTransport: network failure, timeout or unreadable body.
//     ErrMalformedResponse wraps it.
//
// Nothing is retried.
package client
