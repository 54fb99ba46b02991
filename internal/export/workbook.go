package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"quizzer/internal/app"
	"quizzer/internal/domain"
)

const (
	scoresSheet = "Scores"
	topicsSheet = "Topics"
)

// ScoresWorkbook renders score history as an xlsx file with one sheet of attempts
// (oldest first) and one sheet of per-topic summaries.
func ScoresWorkbook(records []domain.ScoreRecord, topics []domain.TopicSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scoresSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(topicsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	sorted := make([]domain.ScoreRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	rows := make([][]interface{}, 0, len(sorted))
	for i, rec := range sorted {
		topic := rec.Topic
		if topic == "" {
			topic = domain.UntitledTopic
		}
		rows = append(rows, []interface{}{
			i + 1,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			topic,
			rec.Score,
			app.ScoreBand(rec.Score),
		})
	}
	if err := writeTable(f, scoresSheet, []string{"#", "Date", "Topic", "Score", "Band"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, t := range topics {
		rows = append(rows, []interface{}{
			t.Topic,
			t.Count,
			t.Average,
			t.Best,
			t.AveragePercent,
			t.BestPercent,
			t.MostRecent.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	headers := []string{"Topic", "Attempts", "Average", "Best", "Average %", "Best %", "Most Recent"}
	if err := writeTable(f, topicsSheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
