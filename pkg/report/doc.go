// Package report turns a fetched SonarQube project bundle into a rendered
// document.
//
// The package is organized by logical concern across multiple files:
//
// # Input (data.go)
//
// Data is the order-stable bundle produced by the API client: project,
// issues, measures, hotspots, quality gate, rule definitions and the raw
// mode signal read from the server settings.
//
// # Pipeline (report.go)
//
// Generate resolves the severity mode, normalizes and partitions issues,
// builds one section per category and streams every row through a
// Renderer while an outline.Indexer records the first location of each
// (category, severity) tier.
//
// # Cover (cover.go)
//
// Cover, Rating and Grade describe the first page: project identity,
// quality gate, A to E ratings and headline measures.
//
// # Output (document.go, summary.go)
//
// Document is the renderer-independent result. It is exported as JSON and
// as a text summary rendered through text/template with sprig functions.
package report
