// =============================================================================
// Vendor Price Comparison - Upload Validation
// =============================================================================
//
// This module checks a batch of quotation files before any of them is parsed:
//   - File extension against the allowed list
//   - Empty files
//   - Per-file size cap
//   - Number of files against the minimum vendor count
//
// VALIDATION STRATEGY:
//   Validation is performed at two levels:
//   1. File-level: each file is checked on its own; a failing file is
//      reported and dropped, the others continue
//   2. Batch-level: the accepted files must still reach the minimum count;
//      otherwise the batch is rejected as a whole
//
// ERROR HANDLING:
//   - Errors are collected, not returned at the first failure
//   - Each error names the file and the rule it broke
//   - "warning" errors drop one file; "error" errors reject the batch
//
// =============================================================================

package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
)

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Rule names.
const (
	RuleExtension = "extension"
	RuleEmpty     = "empty"
	RuleSize      = "size"
	RuleMinFiles  = "min_files"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is one broken rule.
type ValidationError struct {
	// Severity is SeverityWarning for a dropped file and SeverityError for a
	// rejected batch.
	Severity string `json:"severity"`

	// File is empty for batch-level errors.
	File string `json:"file,omitempty"`

	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.File, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if the batch can be analyzed.
	IsValid bool `json:"valid"`

	// Accepted lists the indexes of the files that passed, in input order.
	Accepted []int `json:"-"`

	Errors []*ValidationError `json:"errors,omitempty"`
}

// Err returns the batch-level error, if any.
func (r *ValidationResult) Err() error {
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			return e
		}
	}
	return nil
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Upload is what the validator needs to know about a file.
type Upload struct {
	Name string
	Size int64
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// AllowedExtensions without the dot, compared case-insensitively.
	// Default: xlsx, xls, csv
	AllowedExtensions []string

	// MaxBytes caps each file. Zero disables the check.
	MaxBytes int64

	// MinFiles is the number of accepted files a batch needs.
	MinFiles int
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		AllowedExtensions: []string{"xlsx", "xls", "csv"},
		MaxBytes:          16 << 20,
		MinFiles:          3,
	}
}

// OptionsFromConfig builds validation options from the configuration.
func OptionsFromConfig(cfg *config.Config) ValidationOptions {
	return ValidationOptions{
		AllowedExtensions: cfg.Server.AllowedExtensions,
		MaxBytes:          int64(cfg.Server.MaxUploadMB) << 20,
		MinFiles:          cfg.Analysis.MinVendors,
	}
}

// Validator checks upload batches.
type Validator struct {
	options ValidationOptions
	allowed map[string]struct{}
}

// NewValidator creates a validator.
func NewValidator(options ValidationOptions) *Validator {
	allowed := make(map[string]struct{}, len(options.AllowedExtensions))
	for _, ext := range options.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Validator{options: options, allowed: allowed}
}

// Validate checks a batch with the default options.
func Validate(files []Upload) *ValidationResult {
	return NewValidator(DefaultValidationOptions()).ValidateAll(files)
}

// ValidateAll checks every file, then the batch.
//
// PARAMETERS:
//   - files: The uploads, in vendor input order.
//
// RETURNS:
//   - The result. Accepted keeps the input order of the passing files.
func (v *Validator) ValidateAll(files []Upload) *ValidationResult {
	result := &ValidationResult{}

	for i, f := range files {
		if err := v.ValidateFile(f); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Accepted = append(result.Accepted, i)
	}

	if len(result.Accepted) < v.options.MinFiles {
		result.Errors = append(result.Errors, &ValidationError{
			Severity: SeverityError,
			Rule:     RuleMinFiles,
			Message: fmt.Sprintf("at least %d quotation files are required, got %d usable",
				v.options.MinFiles, len(result.Accepted)),
		})
	}

	result.IsValid = result.Err() == nil
	return result
}

// ValidateFile checks one file. It returns nil when the file passes.
func (v *Validator) ValidateFile(f Upload) *ValidationError {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if _, ok := v.allowed[ext]; !ok {
		return &ValidationError{
			Severity: SeverityWarning,
			File:     f.Name,
			Rule:     RuleExtension,
			Message:  fmt.Sprintf("file type %q is not allowed", ext),
		}
	}

	if f.Size == 0 {
		return &ValidationError{
			Severity: SeverityWarning,
			File:     f.Name,
			Rule:     RuleEmpty,
			Message:  "file is empty",
		}
	}

	if v.options.MaxBytes > 0 && f.Size > v.options.MaxBytes {
		return &ValidationError{
			Severity: SeverityWarning,
			File:     f.Name,
			Rule:     RuleSize,
			Message:  fmt.Sprintf("file is %d bytes, limit is %d", f.Size, v.options.MaxBytes),
		}
	}

	return nil
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders errors one per line.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation found %d problem(s):\n", len(errors)))
	for i, e := range errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e.Error()))
	}
	return sb.String()
}
