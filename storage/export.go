package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type parquetEntry struct {
	RunID    string `parquet:"name=run_id, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Seq      int64  `parquet:"name=seq, type=INT64"`
	Step     string `parquet:"name=step, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Symbol   string `parquet:"name=symbol, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Function string `parquet:"name=function, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Hash     string `parquet:"name=hash, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Success  bool   `parquet:"name=success, type=BOOLEAN"`
	Time     string `parquet:"name=time, type=UTF8, encoding=PLAIN_DICTIONARY"`
}

// ExportParquet writes entries to path as a snappy-compressed parquet file
// for offline audit.
func ExportParquet(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: create parquet: %w", err)
	}
	pw, err := writer.NewParquetWriter(writerfile.NewWriterFile(file), new(parquetEntry), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("storage: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, e := range entries {
		row := &parquetEntry{
			RunID:    e.RunID,
			Seq:      int64(e.Seq),
			Step:     e.Step,
			Symbol:   e.Symbol,
			Function: e.Function,
			Hash:     e.Hash,
			Success:  e.Success,
			Time:     e.Time.UTC().Format(time.RFC3339Nano),
		}
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("storage: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("storage: parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: close parquet file: %w", err)
	}
	return nil
}
