// Package core holds the PharmaDB client workflows, independent of how they
// are presented. The CLI and the browser gateway both drive the same types.
//
// # Adding entries
//
// A [Workflow] is created per "Add" interaction against one subdomain. The
// subdomain name is resolved to its entry table up front; an unknown name
// fails construction with [catalog.ErrUnknownTableMapping].
//
//	Idle -> ChoosingMode -> ManualEntry | CSVEntry -> Idle
//
// Manual entry sends one CreateRow. CSV entry either hands the file to the
// list-scoped bulk endpoint or parses it and creates rows one at a time,
// tallying failures without stopping. See [ImportResult].
//
// # Views
//
// [Dashboard] and [DomainView] keep a snapshot of backend data that a
// [Poller] refreshes on a fixed interval. A DomainView pauses its poller while
// an add workflow is open and refreshes when the workflow closes.
//
// # Error Handling
//
// Failures are returned as wrapped sentinels. [MapError] turns any of them
// into a [UserMessage] with a support code:
//
//   - CAT001-CAT002: catalog lookups
//   - FILE001-FILE005: CSV and document files
//   - VAL001-VAL002: empty records and request validation
//   - API001-API004: backend rejections, connectivity and import load
//   - DEL001: bulk delete
//   - NAV001: unknown domain, subdomain or list
package core
