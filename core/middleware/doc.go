// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the API routes.
//   - rayid: tags every request with a ray id, stored in the fiber context
//     and echoed in the response headers for tracing.
package middleware
