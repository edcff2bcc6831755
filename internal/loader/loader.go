// Package loader turns quotation files into analysis inputs.
//
// Files are parsed concurrently, but the returned inputs are always in the
// order the files were given: that order is the vendor input order, which
// decides price ties.
package loader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
	"github.com/ginjaninja78/vendor-price-comparison/internal/csvparser"
	"github.com/ginjaninja78/vendor-price-comparison/internal/supplier"
	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
	"github.com/ginjaninja78/vendor-price-comparison/internal/xlsxparser"
)

// File is one quotation to load: either a path on disk or in-memory content
// (an upload). Name is used for vendor naming and messages.
type File struct {
	Name string
	Path string
	Data []byte
}

// FromPaths wraps file paths.
func FromPaths(paths []string) []File {
	files := make([]File, len(paths))
	for i, p := range paths {
		files[i] = File{Name: filepath.Base(p), Path: p}
	}
	return files
}

// Loader parses quotation files.
type Loader struct {
	CSV         config.CSVSettings
	Concurrency int
}

// New creates a Loader.
func New(csv config.CSVSettings, concurrency int) *Loader {
	if concurrency < 1 {
		concurrency = 4
	}
	return &Loader{CSV: csv, Concurrency: concurrency}
}

// Load parses every file. A file that cannot be parsed yields an Input with
// Err set; it never aborts the others. Only context cancellation is returned
// as an error.
func (l *Loader) Load(ctx context.Context, files []File) ([]analysis.Input, error) {
	inputs := make([]analysis.Input, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Concurrency)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "loader: cancelled")
			}
			sheets, err := l.parse(f)
			inputs[i] = analysis.Input{
				Quotation: supplier.Quotation{Source: f.Name, Sheets: sheets},
				Err:       err,
			}
			if err != nil {
				zap.L().Debug("loader: file not parsed", zap.String("file", f.Name), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

func (l *Loader) parse(f File) ([]*table.Table, error) {
	r, closeFn, err := f.open()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	switch ext := strings.ToLower(filepath.Ext(f.Name)); ext {
	case ".csv", ".txt", ".tsv":
		settings := l.CSV
		if ext == ".tsv" {
			settings.Delimiter = "tab"
		}
		t, err := csvparser.ParseReader(f.Name, r, settings)
		if err != nil {
			return nil, err
		}
		return []*table.Table{t}, nil
	case ".xlsx", ".xlsm", ".xls":
		return xlsxparser.ParseReader(f.Name, r)
	default:
		return nil, eris.Errorf("loader: %s: unsupported file type %q", f.Name, ext)
	}
}

func (f File) open() (io.Reader, func(), error) {
	if f.Data != nil || f.Path == "" {
		return bytes.NewReader(f.Data), func() {}, nil
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: open %s", f.Path)
	}
	return fh, func() { fh.Close() }, nil
}
