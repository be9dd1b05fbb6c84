// Package core implements the tabular file processing pipeline.
//
// The package holds all domain logic independent of the HTTP layer. Each
// uploaded file moves through the same sequence of steps:
//
//  1. [DetectFormat] classifies the file by its lower-cased extension.
//  2. [Parse] decodes CSV or XLSX bytes into a [Table].
//  3. [Project] keeps the selected columns in their original order.
//  4. [RemoveDuplicates] and [FillMissingNumeric] run in the order the user
//     triggered them.
//  5. [BuildBarChart] plots the first two numeric columns.
//  6. [Encode] converts the table to the other format for download.
//
// [Service.Process] runs the steps for a whole batch. Files are isolated from
// each other: a failure is recorded as a [Message] on that file's
// [FileResult] and the next file is processed regardless. Nothing is kept
// between calls; every interaction recomputes its results from the submitted
// bytes and options.
//
// # Error Handling
//
// Step failures are reported as [*FileError] values that match one of the
// sentinel errors with [errors.Is]:
//
//   - [ErrUnsupportedFormat]: extension other than .csv or .xlsx
//   - [ErrParseFailure]: malformed or empty content
//   - [ErrConversionFailure]: the encoder could not produce output
//   - [ErrNoNumericColumns], [ErrNotEnoughNumeric]: warnings, never fatal
//
// [MapError] turns any of these into a [UserMessage] with a support code.
//
// # History
//
// When a database is configured, each processed file appends a metadata-only
// [ActivityEntry] through a [HistoryStore]. Cell values are never stored.
package core
