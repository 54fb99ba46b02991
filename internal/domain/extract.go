package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONArray is returned when pasted or generated text carries no JSON array.
var ErrNoJSONArray = errors.New("no JSON array found")

// ExtractQuestions pulls the outermost JSON array out of free text (for example a model
// answer wrapped in ```json fences) and decodes it into questions.
func ExtractQuestions(text string) ([]Question, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONArray
	}

	var questions []Question
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

// GenerationPrompt is the instruction text users paste into a text model to produce a
// question list that ExtractQuestions accepts.
func GenerationPrompt(topic string, count int) string {
	if count <= 0 {
		count = 30
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generate only a valid JSON array with EXACTLY %d MCQ questions.\n\n", count)
	b.WriteString("Each item format:\n")
	b.WriteString("{\n  \"question\": \"Question?\",\n  \"options\": [\"A\", \"B\", \"C\", \"D\"],\n  \"answer\": \"Correct option\"\n}\n\n")
	b.WriteString("STRICT RULES:\n")
	fmt.Fprintf(&b, "- Exactly %d questions\n", count)
	fmt.Fprintf(&b, "- Each question must have exactly %d options\n", OptionCount)
	b.WriteString("- Answer must match one of the options\n")
	b.WriteString("- No explanations, no extra text, only the JSON array\n")
	fmt.Fprintf(&b, "- Topic: %q\n\n", strings.TrimSpace(topic))
	b.WriteString("Return ONLY the JSON array.\n")
	return b.String()
}
