// =============================================================================
// Vendor Price Comparison - Analysis Run
// =============================================================================
//
// This package runs one complete analysis: build every vendor, enforce the
// minimum vendor count, reconcile and order the results.
//
// RUN PIPELINE:
//   1. Build each quotation in input order (classifier + builder)
//   2. Collect per-vendor failures as warnings; they never stop the run
//   3. Make vendor names unique ("Acme", "Acme (2)", ...)
//   4. Reject the run when too few vendors produced records
//   5. Reconcile and order
//
// RESULT HANDLE:
//   Every successful run returns a *Result with its own ID. Export steps take
//   the handle; nothing about a run is kept in package state.
//
// =============================================================================

package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/classifier"
	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
	"github.com/ginjaninja78/vendor-price-comparison/internal/reconcile"
	"github.com/ginjaninja78/vendor-price-comparison/internal/supplier"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

// DefaultMinVendors is the number of quotations a comparison needs.
const DefaultMinVendors = 3

var (
	// ErrInsufficientVendors is returned when fewer than the minimum number of
	// vendors produced records.
	ErrInsufficientVendors = eris.New("analysis: not enough quotations")

	// ErrNoVendorsParsed is returned when no vendor produced any record.
	ErrNoVendorsParsed = eris.New("analysis: no quotation could be parsed")
)

// RunError is a fatal run failure. It carries the per-vendor warnings that
// explain it and unwraps to ErrInsufficientVendors or ErrNoVendorsParsed.
type RunError struct {
	Err      error
	Parsed   int
	Required int
	Warnings []types.Warning
}

func (e *RunError) Error() string {
	if errors.Is(e.Err, ErrInsufficientVendors) {
		return fmt.Sprintf("%s: %d usable, at least %d required", e.Err.Error(), e.Parsed, e.Required)
	}
	return e.Err.Error()
}

func (e *RunError) Unwrap() error { return e.Err }

// =============================================================================
// INPUT AND OUTPUT
// =============================================================================

// Input is one quotation handed to a run. Err is set when the file could not
// be read at all; such inputs are reported and skipped.
type Input struct {
	Quotation supplier.Quotation
	Err       error
}

// VendorReport is the per-input status of a run.
type VendorReport struct {
	Source string         `json:"source" yaml:"source"`
	Vendor string         `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Stats  supplier.Stats `json:"stats" yaml:"stats"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the input contributed records.
func (r VendorReport) OK() bool {
	return r.Error == "" && r.Stats.RowsAccepted > 0
}

// Result is the handle of a successful run.
type Result struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Vendors lists the participating vendors in input order.
	Vendors []string `json:"vendors" yaml:"vendors"`

	Items    []*types.ReconciledItem `json:"items" yaml:"items"`
	Wins     types.VendorWinSummary  `json:"wins" yaml:"wins"`
	Reports  []VendorReport          `json:"reports" yaml:"reports"`
	Warnings []types.Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Total returns the sum of the winning subtotals.
func (r *Result) Total() float64 {
	total := 0.0
	for _, it := range r.Items {
		total += it.Subtotal
	}
	return total
}

// =============================================================================
// RUN
// =============================================================================

// Options configures a run.
type Options struct {
	MinVendors      int
	DuplicatePolicy supplier.DuplicatePolicy
	Classifier      classifier.Options

	// VendorScanRows is how many leading rows are searched for a vendor name.
	VendorScanRows int
}

// DefaultOptions returns the defaults used without configuration.
func DefaultOptions() Options {
	return Options{
		MinVendors:      DefaultMinVendors,
		DuplicatePolicy: supplier.KeepFirst,
		Classifier:      classifier.DefaultOptions(),
		VendorScanRows:  10,
	}
}

// OptionsFromConfig maps the analysis section of the configuration.
func OptionsFromConfig(cfg config.AnalysisConfig) (Options, error) {
	policy, err := supplier.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		MinVendors:      cfg.MinVendors,
		DuplicatePolicy: policy,
		Classifier: classifier.Options{
			SampleRows:    cfg.SampleRows,
			NumericRatio:  cfg.NumericRatio,
			ExtraSynonyms: cfg.ExtraSynonyms,
		},
		VendorScanRows: cfg.VendorScanRows,
	}, nil
}

// Analyzer runs analyses with fixed options. It holds no per-run state and is
// safe for concurrent use.
type Analyzer struct {
	opts    Options
	builder *supplier.Builder
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.MinVendors < 1 {
		opts.MinVendors = DefaultMinVendors
	}
	if opts.VendorScanRows <= 0 {
		opts.VendorScanRows = 10
	}
	return &Analyzer{
		opts: opts,
		builder: supplier.NewBuilder(supplier.Options{
			DuplicatePolicy: opts.DuplicatePolicy,
			Classifier:      classifier.New(opts.Classifier),
			Names:           supplier.DefaultNameResolver(opts.VendorScanRows),
		}),
	}
}

// Run analyzes the inputs in the order given.
func (a *Analyzer) Run(inputs []Input) (*Result, error) {
	var (
		sets     []*types.VendorRecordSet
		reports  []VendorReport
		warnings []types.Warning
	)
	names := newNameRegistry()

	for _, in := range inputs {
		src := in.Quotation.Source
		report := VendorReport{Source: src}

		if in.Err != nil {
			report.Error = in.Err.Error()
			reports = append(reports, report)
			warnings = append(warnings, rejected(src, in.Err))
			zap.L().Warn("analysis: quotation unreadable", zap.String("source", src), zap.Error(in.Err))
			continue
		}

		out, err := a.builder.Build(in.Quotation)
		if err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			warnings = append(warnings, rejected(src, err))
			zap.L().Warn("analysis: quotation rejected", zap.String("source", src), zap.Error(err))
			continue
		}

		if unique, renamed := names.claim(out.Vendor); renamed {
			warnings = append(warnings, types.Warning{
				Kind:    types.WarnDuplicateVendor,
				Vendor:  unique,
				Source:  src,
				Message: fmt.Sprintf("vendor name %q already used; renamed to %q", out.Vendor, unique),
			})
			out.Vendor = unique
			out.Records.Vendor = unique
			for i := range out.Warnings {
				out.Warnings[i].Vendor = unique
			}
		}

		report.Vendor = out.Vendor
		report.Stats = out.Stats
		reports = append(reports, report)
		warnings = append(warnings, out.Warnings...)
		sets = append(sets, out.Records)
	}

	parsed := 0
	for _, s := range sets {
		if s.Len() > 0 {
			parsed++
		}
	}
	if parsed == 0 {
		return nil, &RunError{Err: ErrNoVendorsParsed, Required: a.opts.MinVendors, Warnings: warnings}
	}
	if parsed < a.opts.MinVendors {
		return nil, &RunError{Err: ErrInsufficientVendors, Parsed: parsed, Required: a.opts.MinVendors, Warnings: warnings}
	}

	rec := reconcile.Reconcile(sets)
	warnings = append(warnings, rec.Warnings...)

	res := &Result{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Vendors:   rec.Vendors,
		Items:     rec.Items,
		Wins:      rec.Wins,
		Reports:   reports,
		Warnings:  warnings,
	}
	zap.L().Info("analysis: run complete",
		zap.String("id", res.ID),
		zap.Int("vendors", len(res.Vendors)),
		zap.Int("items", len(res.Items)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// Run analyzes quotations with the given options.
func Run(quotations []supplier.Quotation, opts Options) (*Result, error) {
	inputs := make([]Input, len(quotations))
	for i, q := range quotations {
		inputs[i] = Input{Quotation: q}
	}
	return New(opts).Run(inputs)
}

func rejected(source string, err error) types.Warning {
	return types.Warning{
		Kind:    types.WarnVendorRejected,
		Source:  source,
		Message: err.Error(),
	}
}
