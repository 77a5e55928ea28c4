package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func TestExportParquet(t *testing.T) {
	entries := []Entry{
		{RunID: "r1", Seq: 0, Step: "create_tokens", Symbol: "DAI", Function: "create_token", Hash: "0x1", Success: true, Time: time.Unix(1_700_000_000, 0)},
		{RunID: "r1", Seq: 1, Step: "set_prices", Symbol: "DAI", Function: "set_asset_custom_price", Hash: "0x2", Success: true, Time: time.Unix(1_700_000_001, 0)},
	}
	path := filepath.Join(t.TempDir(), "r1.parquet")
	require.NoError(t, ExportParquet(path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	require.Equal(t, "PAR1", string(data[:4]))
	require.Equal(t, "PAR1", string(data[len(data)-4:]))

	file, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer file.Close()
	pr, err := reader.NewParquetReader(file, new(parquetEntry), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	require.Equal(t, int64(2), pr.GetNumRows())

	rows := make([]parquetEntry, pr.GetNumRows())
	require.NoError(t, pr.Read(&rows))
	require.Equal(t, "create_token", rows[0].Function)
	require.Equal(t, "0x2", rows[1].Hash)
	require.Equal(t, int64(1), rows[1].Seq)
	require.True(t, rows[1].Success)
	require.Equal(t, "2023-11-14T22:13:21Z", rows[1].Time)
}

func TestExportParquetBadPath(t *testing.T) {
	err := ExportParquet(filepath.Join(t.TempDir(), "missing", "out.parquet"), nil)
	require.ErrorContains(t, err, "create parquet")
}
