// Package tabular implements the file ingestion, cleaning and export pipeline.
//
// The package has no UI or transport dependencies. Every operation is a
// synchronous transformation over a [Table] that returns a new Table, so a
// caller can process many files in parallel as long as each Table stays owned
// by the goroutine that created it.
//
// # Pipeline
//
// A typical caller runs the steps in this order:
//
//	t, err := tabular.Parse(data, tabular.CSV)
//	t = tabular.RemoveDuplicates(t)
//	t = tabular.FillMissingWithMean(t)
//	t, err = tabular.SelectColumns(t, []string{"name", "amount"})
//	out, mime, err := tabular.Export(t, tabular.XLSX)
//
// # Cells and column types
//
// A cell is a number, text or missing. A column is [Numeric] when every
// non-missing cell parses as a number, otherwise it is [Text] and all of its
// non-missing cells are kept verbatim as text. Empty cells and cells absent
// from short rows are missing.
//
// # Errors
//
// Parse and Export fail with [*UnsupportedFormatError] for formats other than
// CSV and XLSX. Malformed input fails with [*FormatError]. SelectColumns fails
// with [*UnknownColumnError] or [*DuplicateColumnError]. Match them with
// errors.As.
package tabular
