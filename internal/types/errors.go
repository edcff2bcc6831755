package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// PER-VENDOR ERRORS AND WARNINGS
// =============================================================================

// ClassificationError reports a quotation whose required columns could not be
// placed. It is per vendor and never fatal to a run.
type ClassificationError struct {
	// Source is the quotation's file name.
	Source string

	// Sheet is the sheet whose headers are reported.
	Sheet string

	// Headers is the full header row of Sheet, for diagnosis.
	Headers []string

	// Missing names the required roles that were not found.
	Missing []string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: required columns not found (%s); headers: [%s]",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// WarningKind classifies a warning.
type WarningKind string

const (
	// WarnVendorRejected marks a quotation that contributed nothing.
	WarnVendorRejected WarningKind = "vendor_rejected"

	// WarnDuplicateItem marks two rows of one vendor with the same item key.
	WarnDuplicateItem WarningKind = "duplicate_item"

	// WarnDuplicateVendor marks a vendor name that had to be made unique.
	WarnDuplicateVendor WarningKind = "duplicate_vendor"

	// WarnEmptyVendor marks a vendor whose record set was empty.
	WarnEmptyVendor WarningKind = "empty_vendor"
)

// Warning is a non-fatal, human-readable problem with one vendor. Warnings
// travel next to results, never instead of them.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Vendor  string      `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Source  string      `json:"source,omitempty" yaml:"source,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	who := w.Vendor
	if who == "" {
		who = w.Source
	}
	if who == "" {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, who, w.Message)
}
