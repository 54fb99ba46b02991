package domain

import "time"

// OptionCount is the number of choices every question must carry.
const OptionCount = 4

// UntitledTopic labels score records that arrive without a topic.
const UntitledTopic = "Untitled"

// User is the logged-in account as reported by the backend.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the explicit auth context handed to services that talk to the backend.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Question models an MCQ question; Answer must equal exactly one of Options.
type Question struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"len=4,dive,required"`
	Answer   string   `json:"answer" validate:"required"`
}

// Quiz is a titled, topic-labelled question sequence owned by a user.
type Quiz struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Topic      string     `json:"topic"`
	OwnerEmail string     `json:"ownerEmail,omitempty"`
	Questions  []Question `json:"questions"`
}

// ActiveQuiz is the quiz cached locally while the user plays it.
type ActiveQuiz struct {
	QuizID    string     `json:"quizId"`
	Title     string     `json:"title"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	CachedAt  time.Time  `json:"cachedAt"`
}

// ScoreRecord is one historical attempt result owned by the backend.
type ScoreRecord struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Email     string    `json:"email,omitempty"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScoreSubmission is the payload posted after an attempt is submitted.
type ScoreSubmission struct {
	Topic string `json:"topic"`
	Email string `json:"email"`
	Score int    `json:"score"`
}

// AttemptView is the read model a rendering surface needs for one attempt.
type AttemptView struct {
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Progress  float64  `json:"progress"`
	Attempted int      `json:"attempted"`
	Question  Question `json:"question"`
	Selected  string   `json:"selected,omitempty"`
	Submitted bool     `json:"submitted"`
	Score     int      `json:"score"`
}

// TrendPoint is one entry of the recent-performance line chart.
type TrendPoint struct {
	Index     int       `json:"index"`
	Score     int       `json:"score"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// OverallSummary aggregates the whole score history.
type OverallSummary struct {
	Total           int          `json:"total"`
	Average         float64      `json:"average"`
	Max             int          `json:"max"`
	Min             int          `json:"min"`
	AccuracyPercent float64      `json:"accuracyPercent"`
	TopicCount      int          `json:"topicCount"`
	Trend           []TrendPoint `json:"trend"`
}

// TopicSummary aggregates the attempts of a single topic; Attempts are most recent first.
type TopicSummary struct {
	Topic          string        `json:"topic"`
	Attempts       []ScoreRecord `json:"attempts"`
	Count          int           `json:"count"`
	Average        float64       `json:"average"`
	Best           int           `json:"best"`
	MostRecent     ScoreRecord   `json:"mostRecent"`
	AveragePercent int           `json:"averagePercent"`
	BestPercent    int           `json:"bestPercent"`
}

// Dashboard is what the analytics views render. Empty marks a history with no records.
type Dashboard struct {
	Empty   bool           `json:"empty"`
	Overall OverallSummary `json:"overall"`
	Topics  []TopicSummary `json:"topics"`
}
