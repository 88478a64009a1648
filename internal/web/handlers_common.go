package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/tabular"
)

const (
	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temporary files.
	multipartMemory = 32 << 20

	// formOverhead allows for multipart boundaries and option fields on top
	// of the file bytes themselves.
	formOverhead = 1 << 20
)

// parseUploadForm caps the request body at limit bytes and parses it as
// multipart form data.
func parseUploadForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		case errors.Is(err, http.ErrNotMultipart):
			return core.ErrNoFile
		case strings.Contains(err.Error(), "request body too large"):
			return fmt.Errorf("%w: request body exceeds %d bytes", core.ErrFileTooLarge, limit)
		default:
			return core.ValidationErrors{{Field: "form", Message: err.Error()}}
		}
	}
	return nil
}

// uploadedFiles returns the file parts under field.
func uploadedFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// readUpload reads at most maxSize+1 bytes of a file part, so the service
// can still tell the file was too large without buffering all of it.
func readUpload(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return data, nil
}

// parseOptions reads processing options from form fields:
//
//	remove_duplicates  checkbox, drops repeated rows
//	fill_missing       checkbox, fills numeric gaps with the column mean
//	clean              repeated, explicit operation names applied after the checkboxes
//	columns            repeated or comma-separated column names to keep, in order
//	target             "csv" or "xlsx"
//	preview_rows       number of preview rows
func parseOptions(r *http.Request) (core.Options, error) {
	var (
		opts core.Options
		errs core.ValidationErrors
	)

	if formBool(r, "remove_duplicates") {
		opts.Clean = append(opts.Clean, tabular.RemoveDuplicatesOp)
	}
	if formBool(r, "fill_missing") {
		opts.Clean = append(opts.Clean, tabular.FillMissingWithMeanOp)
	}
	for _, name := range r.Form["clean"] {
		if strings.TrimSpace(name) == "" {
			continue
		}
		op, err := tabular.ParseCleanOp(name)
		if err != nil {
			errs = append(errs, core.ValidationError{Field: "clean", Message: err.Error()})
			continue
		}
		opts.Clean = append(opts.Clean, op)
	}

	for _, v := range r.Form["columns"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.Columns = append(opts.Columns, name)
			}
		}
	}

	if v := strings.TrimSpace(r.FormValue("target")); v != "" {
		target, err := tabular.ParseFormat(v)
		if err != nil {
			return core.Options{}, err
		}
		opts.Target = target
	}

	if v := strings.TrimSpace(r.FormValue("preview_rows")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, core.ValidationError{Field: "preview_rows", Message: "must be an integer"})
		} else {
			opts.PreviewRows = n
		}
	}

	if len(errs) > 0 {
		return core.Options{}, errs
	}
	return opts, nil
}

// formBool reports whether a checkbox or boolean field is set. "on" is what
// browsers send for a checked box.
func formBool(r *http.Request, name string) bool {
	v := strings.TrimSpace(r.FormValue(name))
	if strings.EqualFold(v, "on") {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
