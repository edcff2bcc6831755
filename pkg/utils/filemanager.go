// =============================================================================
// Vendor Price Comparison - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the analyze command:
//   - Quotation discovery in the input directory
//   - Report file naming
//   - Warnings log generation
//   - Directory management
//
// DISCOVERY ORDER:
//   Files are returned in lexical order of their names. That order is the
//   vendor input order, so a rerun over the same directory breaks price ties
//   the same way.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the analyze command.
type FileManager struct {
	// InputDir is scanned for quotation files.
	InputDir string

	// OutputDir receives reports and warning logs.
	OutputDir string

	// Extensions are the quotation file extensions, without the dot.
	Extensions []string
}

// NewFileManager creates a new FileManager.
func NewFileManager(inputDir, outputDir string, extensions []string) *FileManager {
	if len(extensions) == 0 {
		extensions = []string{"xlsx", "xls", "csv"}
	}
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Extensions: extensions,
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return eris.Wrapf(err, "utils: create directory %s", fm.OutputDir)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the quotation files directly inside InputDir.
//
// RETURNS:
//   - File paths in lexical order. Hidden files and Excel lock files
//     ("~$book.xlsx") are skipped.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, eris.Wrapf(err, "utils: scan input directory %s", fm.InputDir)
	}

	allowed := make(map[string]struct{}, len(fm.Extensions))
	for _, ext := range fm.Extensions {
		allowed["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	var result []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		result = append(result, filepath.Join(fm.InputDir, name))
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {id}        - The analysis ID, from params
//   - params: Extra placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx.
//
// EXAMPLE:
//   format: "price_comparison_{timestamp}.xlsx"
//   output: "price_comparison_20240115_143022.xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}

// =============================================================================
// WARNINGS LOG
// =============================================================================

// WriteWarningLog writes run warnings to a text file in outputDir.
//
// RETURNS:
//   - The path to the log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteWarningLog(warnings []types.Warning, outputDir string) (string, error) {
	if len(warnings) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, fmt.Sprintf("warnings_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", eris.Wrap(err, "utils: create warnings log")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Vendor Price Comparison - Warnings\n"+
		"Generated: %s\n"+
		"Total Warnings: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		len(warnings))

	for i, w := range warnings {
		fmt.Fprintf(writer, "Warning #%d\n  Kind:    %s\n", i+1, w.Kind)
		if w.Source != "" {
			fmt.Fprintf(writer, "  File:    %s\n", w.Source)
		}
		if w.Vendor != "" {
			fmt.Fprintf(writer, "  Vendor:  %s\n", w.Vendor)
		}
		fmt.Fprintf(writer, "  Message: %s\n\n", w.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Warnings\n")

	if err := writer.Flush(); err != nil {
		return "", eris.Wrap(err, "utils: flush warnings log")
	}
	return logPath, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
