// =============================================================================
// XmlCreator40 - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter:
//   - Directory management
//   - Workbook discovery
//   - Input archival (moving converted workbooks)
//   - Upload naming and retention
//   - Batch summaries
//
// ARCHIVAL STRATEGY:
//   - Input workbooks are moved to the archive directory after a successful
//     conversion
//   - Failed workbooks remain in their original location
//   - An existing archive entry is never overwritten; the new file gets a
//     timestamp suffix instead
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// WorkbookPattern matches the workbooks picked up by DiscoverInputFiles.
const WorkbookPattern = "*.xlsx"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory where input workbooks are placed.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string

	// UploadDir keeps workbooks received by the web front end.
	UploadDir string

	// ArchiveDir receives converted input workbooks.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/datos.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether ArchiveInputFile moves anything.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, uploadDir, archiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		UploadDir:        uploadDir,
		ArchiveDir:       archiveDir,
		ArchiveOnSuccess: true,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every configured directory that doesn't exist.
// Empty entries are skipped.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.UploadDir,
		fm.ArchiveDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files in the input directory matching the
// glob pattern, in lexical order. An empty pattern means WorkbookPattern.
// Spreadsheet lock files ("~$datos.xlsx") are skipped.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = WorkbookPattern
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "~$") {
			continue
		}
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		result = append(result, file)
	}

	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory and returns
// its new path. With ArchiveOnSuccess unset the file stays where it is.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.archivePath(filePath, time.Now())

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string, now time.Time) string {
	dir := fm.ArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	name := filepath.Base(filePath)
	target := filepath.Join(dir, name)
	if FileExists(target) {
		ext := filepath.Ext(name)
		target = filepath.Join(dir, fmt.Sprintf("%s_%s%s",
			strings.TrimSuffix(name, ext), now.Format("20060102_150405"), ext))
	}
	return target
}

// =============================================================================
// UPLOADS
// =============================================================================

// SanitizeFilename reduces an uploaded file name to a safe base name: the
// directory part is dropped, whitespace becomes "_" and only ASCII letters,
// digits, '.', '-' and '_' are kept. Leading dots and underscores are
// trimmed so the result is never hidden or a relative path element. The
// result may be empty.
func SanitizeFilename(name string) string {
	// Both separators, whatever the client platform.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	return strings.TrimLeft(b.String(), "._")
}

// UploadFileName returns a unique name for a stored upload:
// "{uuid}_{sanitized original}".
func UploadFileName(original string) string {
	name := SanitizeFilename(original)
	if name == "" {
		name = "upload" + WorkbookPattern[1:]
	}
	return uuid.NewString() + "_" + name
}

// CleanOldFiles removes regular files in dir older than maxAge and returns
// how many were removed. A missing directory removes nothing.
func CleanOldFiles(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
			}
			removed++
		}
	}

	return removed, nil
}

// =============================================================================
// BATCH SUMMARY
// =============================================================================

// SummaryEntry is one row of a batch summary.
type SummaryEntry struct {
	InputFile         string `csv:"input_file"`
	OutputFile        string `csv:"output_file"`
	Status            string `csv:"status"`
	ErrorKind         string `csv:"error_kind"`
	ErrorMessage      string `csv:"error_message"`
	Operations        int    `csv:"operations"`
	CustodyOperations int    `csv:"custody_operations"`
	Warnings          int    `csv:"warnings"`
	DurationMs        int64  `csv:"duration_ms"`
}

// Summary statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// WriteSummary writes entries as "processing_summary_{timestamp}.csv" in
// outputDir and returns the file path.
func WriteSummary(entries []SummaryEntry, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("processing_summary_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&entries, file); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return path, nil
}

// ReadSummary reads a summary written by WriteSummary.
func ReadSummary(path string) ([]SummaryEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary: %w", err)
	}
	defer file.Close()

	var entries []SummaryEntry
	if err := gocsv.UnmarshalFile(file, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return entries, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
