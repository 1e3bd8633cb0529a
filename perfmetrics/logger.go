// Package perfmetrics appends transfer outcomes to a CSV file so repeated
// runs can be compared offline.
package perfmetrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CsvHeader is the column layout of the performance log.
const CsvHeader = "Timestamp,Direction,FileName,Bytes,ResumedAtOffset,Attempts,TimeSec,ThroughputKBps\n"

// Record is one completed transfer.
type Record struct {
	Direction string // "upload" or "download"
	FileName  string
	Bytes     int64
	ResumedAt int64
	Attempts  int
	Duration  time.Duration
}

// LogTransferToCSV appends one record to perfmetrics/<fileName>, creating
// the directory and the header as needed.
func LogTransferToCSV(fileName string, rec Record) error {
	dir := "perfmetrics"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	filePath := filepath.Join(dir, fileName)

	fileExists := true
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %v", filePath, err)
	}
	defer file.Close()

	if !fileExists {
		if _, err := file.WriteString(CsvHeader); err != nil {
			return fmt.Errorf("failed to write header: %v", err)
		}
	}

	throughput := 0.0
	if secs := rec.Duration.Seconds(); secs > 0 {
		throughput = float64(rec.Bytes) / 1024 / secs
	}

	writer := csv.NewWriter(file)
	record := []string{
		time.Now().Format(time.RFC3339),
		rec.Direction,
		rec.FileName,
		strconv.FormatInt(rec.Bytes, 10),
		strconv.FormatInt(rec.ResumedAt, 10),
		strconv.Itoa(rec.Attempts),
		strconv.FormatFloat(rec.Duration.Seconds(), 'f', 2, 64),
		strconv.FormatFloat(throughput, 'f', 2, 64),
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %v", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %v", err)
	}
	return nil
}
