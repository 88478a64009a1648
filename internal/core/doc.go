// Package core runs uploaded files through the tabular pipeline.
//
// This package holds the per-file workflow independent of any UI or transport
// layer: web handlers, a CLI or tests can drive it unchanged.
//
// # Processing
//
// [Service.Process] handles one [FileRequest]:
//
//  1. Validate the request (name, options, size limit)
//  2. Detect the format from the declared value or the file extension
//  3. Take a slot from the [UploadLimiter]
//  4. Parse, apply cleaning operations in order, project columns
//  5. Build the preview, schema and bar chart data
//  6. Export to the target format when one is requested
//
// [Service.ProcessBatch] runs many files in parallel. Each file owns its own
// Table, and a failing file is reported on its [FileResult] without affecting
// the rest of the batch.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE008: File errors (size, format, parsing, encoding)
//   - VAL005-VAL008: Option errors (unknown or repeated columns, bad options)
//   - UPL002-UPL005: Processing errors (busy, cancelled, timeout)
//   - RATE001: Throttled client
package core
