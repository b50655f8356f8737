// Package devserver is a small SQLite-backed catalog API used for local
// development and as the end-to-end fixture for the client.
//
// Routes:
//
//	GET  /api/books            filter by any book column (?Author=le+guin)
//	GET  /api/lookup/{table}   Categories, Publishers, Formats, Conditions
//	GET  /api/book/{id}
//	PUT  /api/book/{id}        partial update
//	POST /api/book             create
//	GET  /health
//
// Text columns filter by case-insensitive substring, numeric columns by
// exact value. Lookup table names are case-insensitive. Unknown tables and
// ids answer 404; unknown fields answer 400.
package devserver
