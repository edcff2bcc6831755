// =============================================================================
// Vendor Price Comparison - Main Entry Point
// =============================================================================
//
// USAGE:
//   pricecompare analyze FILE...  - Compare vendor quotations
//   pricecompare serve            - Start the upload service
//   pricecompare version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, classification, reconciliation, reporting, HTTP
//   - pkg/       : file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/vendor-price-comparison/cmd"
)

func main() {
	cmd.Execute()
}
