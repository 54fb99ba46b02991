package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

func TestWriteExportSingleTopic(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	records := []domain.ScoreRecord{
		{ID: "1", Topic: "Math", Score: 25, CreatedAt: base},
		{ID: "2", Topic: "History", Score: 10, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Topic: "Math", Score: 15, CreatedAt: base.Add(2 * time.Hour)},
	}
	topics := app.AggregateByTopic(records, app.AnalyticsOptions{})
	var math domain.TopicSummary
	for _, s := range topics {
		if s.Topic == "Math" {
			math = s
		}
	}
	require.Equal(t, 2, math.Count)

	path := filepath.Join(t.TempDir(), "math.xlsx")
	var out bytes.Buffer
	require.NoError(t, writeExport(&out, path, []domain.TopicSummary{math}))
	assert.Contains(t, out.String(), "Exported 2 attempts")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scores")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Math", rows[1][2])
	assert.Equal(t, "Math", rows[2][2])

	summary, err := f.GetRows("Topics")
	require.NoError(t, err)
	assert.Len(t, summary, 2)
}

func TestWriteExportEmptyPathIsNoop(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeExport(&out, "", nil))
	assert.Empty(t, out.String())
}
