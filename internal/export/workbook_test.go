package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

func TestScoresWorkbook(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	records := []domain.ScoreRecord{
		{ID: "2", Topic: "B", Score: 10, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "1", Topic: "A", Score: 25, CreatedAt: base},
		{ID: "3", Topic: "", Score: 20, CreatedAt: base.Add(4 * time.Hour)},
	}
	topics := app.AggregateByTopic(records, app.AnalyticsOptions{})

	data, err := ScoresWorkbook(records, topics)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	scores, err := f.GetRows("Scores")
	require.NoError(t, err)
	require.Len(t, scores, 4)
	assert.Equal(t, []string{"#", "Date", "Topic", "Score", "Band"}, scores[0])
	assert.Equal(t, []string{"1", "2025-05-01 09:00:00", "A", "25", "strong"}, scores[1])
	assert.Equal(t, "B", scores[2][2])
	assert.Equal(t, "weak", scores[2][4])
	assert.Equal(t, "Untitled", scores[3][2])

	summary, err := f.GetRows("Topics")
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "A", summary[1][0])
	assert.Equal(t, "B", summary[2][0])
	assert.Equal(t, "Untitled", summary[3][0])
}

func TestScoresWorkbookEmpty(t *testing.T) {
	data, err := ScoresWorkbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Scores")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
