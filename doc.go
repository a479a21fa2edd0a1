// Package commission reconciles commission statements and introducer reports into a
// single authoritative ledger of cases.
//
// The core functionalities include:
//   - Ledger Management: a table of cases keyed by case identifier, with a fixed set of
//     attributes and an open-ended set of payment type columns that only ever grows.
//   - Reconciliation: merging parsed records into a ledger. Payments accumulate per
//     payment type, introducer reports create cases and update their status.
//   - Run History: the fingerprints of reconciled documents, so that a document fetched
//     twice over overlapping windows is never counted twice.
//   - Views: a derived, read-only table of the ledger with its summary figures.
//   - Data Persistence: an XLSX workbook written atomically.
//
// Documents are parsed by package parser, runs are orchestrated by package runner.
package commission
