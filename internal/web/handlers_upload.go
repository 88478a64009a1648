package web

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/go-chi/render"
)

// PreviewResponse is the JSON body of /api/preview. Files keep the order in
// which they were uploaded.
type PreviewResponse struct {
	Files     []*core.FileResult `json:"files"`
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
}

// handlePreview parses every uploaded file, applies the requested cleaning
// and column selection, and returns schema, preview rows and chart data per
// file. A file that fails carries its own error; the request still succeeds.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	maxFiles := s.cfg.Upload.MaxFiles

	if err := parseUploadForm(w, r, maxSize*int64(maxFiles)+formOverhead); err != nil {
		s.respondError(w, r, err)
		return
	}

	files := uploadedFiles(r, "files")
	if len(files) == 0 {
		files = uploadedFiles(r, "file")
	}
	if len(files) == 0 {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	if len(files) > maxFiles {
		s.respondError(w, r, fmt.Errorf("%w: %d files, limit is %d", core.ErrTooManyFiles, len(files), maxFiles))
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	// Previews never export.
	opts.Target = ""

	reqs := make([]core.FileRequest, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh, maxSize)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		reqs = append(reqs, core.FileRequest{
			Name:    fh.Filename,
			Data:    data,
			Options: opts,
		})
	}

	results := s.service.ProcessBatch(withClient(r), reqs)

	resp := PreviewResponse{Files: results}
	for _, res := range results {
		if res.OK() {
			resp.Processed++
		} else {
			resp.Failed++
		}
	}

	logging.FromContext(r.Context()).Info("preview complete",
		"files", len(results),
		"failed", resp.Failed,
	)
	render.JSON(w, r, resp)
}

// handleConvert runs one file through the pipeline and streams the exported
// file back as a download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize

	if err := parseUploadForm(w, r, maxSize+formOverhead); err != nil {
		s.respondError(w, r, err)
		return
	}

	files := uploadedFiles(r, "file")
	if len(files) == 0 {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	if len(files) > 1 {
		s.respondError(w, r, fmt.Errorf("%w: convert accepts one file, got %d", core.ErrTooManyFiles, len(files)))
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if opts.Target == "" {
		s.respondError(w, r, core.ValidationErrors{{Field: "target", Message: "is required"}})
		return
	}

	fh := files[0]
	data, err := readUpload(fh, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res := s.service.Process(withClient(r), core.FileRequest{
		Name:    fh.Filename,
		Data:    data,
		Options: opts,
	})
	if !res.OK() {
		s.respondError(w, r, res.Err)
		return
	}

	out := res.Output
	w.Header().Set("Content-Type", out.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-File-ID", res.ID)
	w.Header().Set("X-Row-Count", strconv.Itoa(res.Rows))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(out.Data); err != nil {
		logging.FromContext(r.Context()).Warn("write converted file", "file", out.Filename, "error", err)
	}
}
