// Package http implements the HTTP handlers of the analyzer web service.
//
// Handlers stay thin: they parse the multipart upload and form fields,
// delegate to services.AnalysisService and render either the result or an
// RFC 7807 problem through errors.ErrorHandler.
//
// Routes served by this package:
//
//	POST /api/analyze          multipart file + x, y, i, j -> result.xlsx
//	POST /api/analyze/preview  same input (+ optional rows) -> JSON preview
//	GET  /api/health           service and reports directory status
//	GET  /api/version          build information
//
// Rate limiting, body size limits and request timeouts are applied by the
// router in package app.
package http
