package csvwriter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeDataset(t *testing.T, compress bool, n int) (string, []learning.LabeledRecord) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	w, err := NewWriter(path, compress, nil)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())

	obs := observations(n)
	want := make([]learning.LabeledRecord, n)
	for i, o := range obs {
		require.NoError(t, w.WriteObservation(o))
		want[i] = o.Record
	}
	require.NoError(t, w.Close())
	return path, want
}

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecords_ExportedDataset(t *testing.T) {
	for _, compress := range []bool{false, true} {
		path, want := writeDataset(t, compress, 25)

		got, err := ReadRecords(context.Background(), path, compress, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "compress=%v", compress)
	}
}

func TestReadRecords_SkipsMalformedRows(t *testing.T) {
	content := strings.Join([]string{
		"label,pm25,temperature,humidity,wind_speed,visibility,pressure,note",
		"0,10,20,50,3,10,1013,ok",
		"1,abc,20,50,3,10,1013,bad pm25",
		"9,10,20,50,3,10,1013,bad label",
		"5,300,20,50,3,10,1013,ok",
	}, "\n") + "\n"

	core, logs := observer.New(zap.WarnLevel)
	got, err := ReadRecords(context.Background(), writeRaw(t, content), false, zap.New(core))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Label)
	assert.Equal(t, 300.0, got[1].PM25)
	assert.Equal(t, 5, got[1].Label)
	assert.Equal(t, 2, logs.FilterMessage("Skipping CSV record").Len())
}

func TestReadRecords_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadRecords(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), false, nil)
		assert.ErrorContains(t, err, "failed to open csv file")
	})

	t.Run("missing column", func(t *testing.T) {
		path := writeRaw(t, "pm25,temperature,label\n1,2,0\n")
		_, err := ReadRecords(context.Background(), path, false, nil)
		assert.ErrorContains(t, err, `missing column "humidity"`)
	})

	t.Run("empty file", func(t *testing.T) {
		got, err := ReadRecords(context.Background(), writeRaw(t, ""), false, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("cancelled context", func(t *testing.T) {
		path, _ := writeDataset(t, false, 5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ReadRecords(ctx, path, false, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
