// Package catalogapi provides an HTTP client for the catalog API.
//
// # Endpoints
//
//   - GET /api/books?Field=value...: the primary collection, filtered server-side
//   - GET /api/lookup/{table}: one auxiliary lookup table
//   - GET /api/book/{id}: a single record
//   - PUT /api/book/{id}, POST /api/book: save a record
//
// Every endpoint returns JSON. Collections are arrays of flat objects; a null
// or empty body is an empty collection.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: bookshelf/0.1
//   - Forward the request id from fetch.RequestID as X-Request-ID
//   - Have a 5-second timeout unless WithTimeout says otherwise
//
// # Error Handling
//
// Transport failures and 4xx/5xx statuses are returned as errors. A body that
// is not valid JSON wraps catalog.ErrMalformedResponse, which the screen
// treats as an empty result rather than a failure. A 404 on a single record
// wraps ErrNotFound.
//
// The Client is safe for concurrent use.
package catalogapi
