// Package core provides the schema-reconciliation and type-inference engine
// for promotion redemption exports.
//
// Exports arrive with inconsistent header spellings, column orders and date
// conventions. This package turns one [RawTable] into a [CanonicalTable] with
// a fixed column set, independent of any file format or frontend.
//
// # Pipeline
//
// A [Pipeline] runs five stages strictly forward:
//
//  1. [HeaderMatcher] resolves each raw header to a canonical field. Headers
//     mentioning "date" always become redemption_date; otherwise an exact
//     match, then the best fuzzy match at or above the cutoff, is taken.
//  2. [Reconcile] lays the columns out in canonical order, filling missing
//     fields with nulls and appending unmatched columns as extras.
//  3. [TypeCoercer] enforces text and numeric types. quantity is a count and
//     is truncated; sales_value keeps its decimal precision.
//  4. [DateResolver] parses each date column as day-first and as month-first,
//     keeps the convention that reads more values, and renders ISO dates.
//  5. [Prune] drops rows with no text and no non-zero numbers.
//
// # Diagnostics
//
// Every run produces a [Report] describing which rule matched each header,
// which fields were synthesized, and how dates were resolved. The report is
// a side channel: nothing in it alters processing.
//
// # Error Handling
//
// The pipeline itself cannot fail; unparsable cells become null. File-level
// failures raised around it are mapped to support codes by [MapError].
package core
