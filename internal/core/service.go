package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
	"github.com/JonMunkholm/datasweeper/internal/tabular"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultPreviewRows is the preview size used when neither the request nor the
// configuration sets one.
const DefaultPreviewRows = 5

// Observer receives one call per processed file. *metrics.Recorder implements it.
type Observer interface {
	ObserveFile(source, target, outcome string, rows int, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFile(string, string, string, int, time.Duration) {}

// ServiceConfig holds the limits the service enforces.
type ServiceConfig struct {
	MaxFileSize   int64
	PreviewRows   int
	MaxConcurrent int
	MaxWaitTime   time.Duration

	// FileTimeout bounds processing of a single file. Zero means no limit
	// beyond the caller's context.
	FileTimeout time.Duration
}

// Service runs uploaded files through the tabular pipeline.
// It is safe for concurrent use; every file gets its own Table.
type Service struct {
	cfg      ServiceConfig
	limiter  *UploadLimiter
	validate *validator.Validate
	observer Observer
}

// NewService creates a Service. obs may be nil.
func NewService(cfg ServiceConfig, obs Observer) *Service {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Service{
		cfg:      cfg,
		limiter:  NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		validate: newValidator(),
		observer: obs,
	}
}

// Limiter exposes the concurrency guard for health output and shutdown.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Process parses, cleans, projects and optionally exports one file.
// Failures are reported on the result, never as a panic or a returned error,
// so one bad file cannot affect others processed alongside it.
func (s *Service) Process(ctx context.Context, req FileRequest) *FileResult {
	start := time.Now()
	res := &FileResult{
		ID:   uuid.NewString(),
		Name: req.Name,
		Size: len(req.Data),
	}
	logger := logging.WithFields(ctx,
		"file_id", res.ID,
		"file", req.Name,
		"size", res.Size,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	err := s.process(ctx, req, res, logger)
	res.Elapsed = time.Since(start)

	outcome := metrics.OutcomeOK
	if err != nil {
		res.Err = err
		res.Table = nil
		msg := MapError(err)
		res.Error = &msg
		outcome = classify(err)
		if outcome == metrics.OutcomeFailed {
			logger.Error("file processing failed", "error", err, "code", msg.Code)
		} else {
			logger.Warn("file rejected", "error", err, "code", msg.Code)
		}
	} else {
		logger.Info("file processed",
			"format", res.Format,
			"target", req.Options.Target,
			"rows", res.Rows,
			"columns", len(res.Columns),
			"duration_ms", res.Elapsed.Milliseconds(),
		)
	}

	s.observer.ObserveFile(string(res.Format), string(req.Options.Target), outcome, res.Rows, res.Elapsed)
	return res
}

func (s *Service) process(ctx context.Context, req FileRequest, res *FileResult, logger *slog.Logger) error {
	if err := validateRequest(s.validate, req, s.cfg.MaxFileSize); err != nil {
		return err
	}

	format := req.Format
	if format == "" {
		f, err := tabular.FormatFromFilename(req.Name)
		if err != nil {
			return err
		}
		format = f
	}
	res.Format = format

	if len(req.Data) == 0 {
		return &tabular.FormatError{Format: format, Reason: "no data", Err: tabular.ErrNoRows}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	if s.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FileTimeout)
		defer cancel()
	}

	table, err := tabular.Parse(req.Data, format)
	if err != nil {
		return err
	}
	logger.Debug("parsed", "rows", table.NumRows(), "columns", table.NumColumns())

	if err := ctx.Err(); err != nil {
		return err
	}

	opts := req.Options
	table, err = tabular.ApplyAll(table, opts.Clean...)
	if err != nil {
		return err
	}

	if len(opts.Columns) > 0 {
		table, err = tabular.SelectColumns(table, opts.Columns)
		if err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	res.Table = table
	res.Rows = table.NumRows()
	res.Columns = table.Schema()
	res.Preview = buildPreview(table, s.previewRows(opts))
	if chart := tabular.BarChart(table); !chart.Empty() {
		res.Chart = &chart
	}

	if opts.Target != "" {
		data, mime, err := tabular.Export(table, opts.Target)
		if err != nil {
			return err
		}
		res.Output = &Output{
			Filename: tabular.OutputFilename(req.Name, opts.Target),
			MIMEType: mime,
			Data:     data,
		}
	}
	return nil
}

func (s *Service) previewRows(opts Options) int {
	if opts.PreviewRows > 0 {
		return opts.PreviewRows
	}
	return s.cfg.PreviewRows
}

func buildPreview(t *tabular.Table, n int) *Preview {
	head := t.Head(n)
	return &Preview{
		Header: head.ColumnNames(),
		Rows:   head.Records(),
	}
}

// ProcessBatch processes files in parallel and returns one result per request
// in request order. A failing file never stops the others.
func (s *Service) ProcessBatch(ctx context.Context, reqs []FileRequest) []*FileResult {
	results := make([]*FileResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.limiter.MaxConcurrent())
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = s.Process(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// classify buckets an error for metrics: problems with the input are
// rejections, everything else is a failure.
func classify(err error) string {
	switch {
	case errors.Is(err, ErrTooManyUploads),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeFailed
	case IsUserFacing(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}

// Drain waits for in-flight files during shutdown.
func (s *Service) Drain(ctx context.Context) error {
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("drain uploads: %w", err)
	}
	return nil
}
