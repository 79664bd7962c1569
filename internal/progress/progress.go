// Package progress provides byte-progress plumbing and human-readable
// formatting for transfer reporting.
package progress

import (
	"fmt"
	"io"
)

// Func receives the cumulative number of bytes moved so far
type Func func(transferred int64)

// Writer wraps an io.Writer and reports cumulative write progress
type Writer struct {
	writer      io.Writer
	report      Func
	transferred int64
}

// NewWriter creates a new progress-tracking writer
func NewWriter(w io.Writer, report Func) *Writer {
	return &Writer{
		writer: w,
		report: report,
	}
}

// Write implements io.Writer
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.writer.Write(p)
	if n > 0 {
		pw.transferred += int64(n)
		if pw.report != nil {
			pw.report(pw.transferred)
		}
	}
	return n, err
}

// Transferred returns the cumulative byte count
func (pw *Writer) Transferred() int64 {
	return pw.transferred
}

// Reader wraps an io.Reader and reports cumulative read progress
type Reader struct {
	reader      io.Reader
	report      Func
	transferred int64
}

// NewReader creates a new progress-tracking reader
func NewReader(r io.Reader, report Func) *Reader {
	return &Reader{
		reader: r,
		report: report,
	}
}

// Read implements io.Reader
func (pr *Reader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
		if pr.report != nil {
			pr.report(pr.transferred)
		}
	}
	return n, err
}

// FormatBytes formats bytes into human-readable string
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatSpeed formats bytes per second into human-readable string
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}
