package core

import (
	"time"

	"github.com/JonMunkholm/datasweeper/internal/tabular"
)

// Options controls what the pipeline does with one file after parsing.
type Options struct {
	// Clean lists cleaning operations, applied in order.
	Clean []tabular.CleanOp `json:"clean,omitempty" validate:"omitempty,dive,oneof=remove_duplicates fill_missing_mean"`

	// Columns projects the table onto these columns in this order. Empty keeps all columns.
	Columns []string `json:"columns,omitempty" validate:"omitempty,max=1000,dive,required"`

	// Target is the export format. Empty skips export.
	Target tabular.Format `json:"target,omitempty"`

	// PreviewRows is the number of rows included in the preview. Zero uses the service default.
	PreviewRows int `json:"preview_rows,omitempty" validate:"gte=0,lte=1000"`
}

// FileRequest is one uploaded file plus the processing options for it.
type FileRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Data []byte `json:"-"`

	// Format overrides detection from the file name extension.
	Format  tabular.Format `json:"format,omitempty"`
	Options Options        `json:"options"`
}

// Preview is the first rows of a processed table, serialized as strings.
type Preview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Output is an exported file ready for download.
type Output struct {
	Filename string
	MIMEType string
	Data     []byte
}

// FileResult is the outcome of processing one file. Exactly one of Err and
// Table is set.
type FileResult struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Size    int                  `json:"size"`
	Format  tabular.Format       `json:"format,omitempty"`
	Rows    int                  `json:"rows"`
	Columns []tabular.ColumnInfo `json:"columns,omitempty"`
	Preview *Preview             `json:"preview,omitempty"`
	Chart   *tabular.Chart       `json:"chart,omitempty"`
	Error   *UserMessage         `json:"error,omitempty"`
	Elapsed time.Duration        `json:"-"`
	Output  *Output              `json:"-"`
	Table   *tabular.Table       `json:"-"`
	Err     error                `json:"-"`
}

// OK reports whether the file was processed without error.
func (r *FileResult) OK() bool {
	return r.Err == nil
}
