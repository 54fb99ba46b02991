package app

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"quizzer/internal/domain"
)

const (
	defaultMaxScore    = 30
	defaultTrendWindow = 20
)

// AnalyticsOptions tunes percentage and trend computations.
type AnalyticsOptions struct {
	// MaxScore is the best achievable score of a single attempt.
	MaxScore int
	// TrendWindow is how many of the most recent records feed the trend series.
	TrendWindow int
}

func (o AnalyticsOptions) withDefaults() AnalyticsOptions {
	if o.MaxScore == 0 {
		o.MaxScore = defaultMaxScore
	}
	if o.TrendWindow <= 0 {
		o.TrendWindow = defaultTrendWindow
	}
	return o
}

// AggregateOverall summarizes the whole history. It reports false for an empty history.
func AggregateOverall(records []domain.ScoreRecord, opts AnalyticsOptions) (domain.OverallSummary, bool) {
	if len(records) == 0 {
		return domain.OverallSummary{}, false
	}
	opts = opts.withDefaults()
	ordered := sortByTime(records)

	total := len(ordered)
	sum := 0
	maxScore, minScore := ordered[0].Score, ordered[0].Score
	topics := make(map[string]struct{})
	for _, r := range ordered {
		sum += r.Score
		if r.Score > maxScore {
			maxScore = r.Score
		}
		if r.Score < minScore {
			minScore = r.Score
		}
		topics[topicLabel(r.Topic)] = struct{}{}
	}
	avg := float64(sum) / float64(total)

	window := ordered
	if len(window) > opts.TrendWindow {
		window = window[len(window)-opts.TrendWindow:]
	}
	trend := make([]domain.TrendPoint, 0, len(window))
	for i, r := range window {
		trend = append(trend, domain.TrendPoint{
			Index:     i + 1,
			Score:     r.Score,
			Topic:     topicLabel(r.Topic),
			CreatedAt: r.CreatedAt,
		})
	}

	return domain.OverallSummary{
		Total:           total,
		Average:         round(avg, 2),
		Max:             maxScore,
		Min:             minScore,
		AccuracyPercent: round(percentOf(avg, opts.MaxScore), 1),
		TopicCount:      len(topics),
		Trend:           trend,
	}, true
}

// AggregateByTopic groups records by exact topic. Groups follow the order in which each
// topic first appears in time; attempts inside a group are most recent first.
func AggregateByTopic(records []domain.ScoreRecord, opts AnalyticsOptions) []domain.TopicSummary {
	opts = opts.withDefaults()
	ordered := sortByTime(records)

	var order []string
	grouped := make(map[string][]domain.ScoreRecord)
	for _, r := range ordered {
		topic := topicLabel(r.Topic)
		if _, ok := grouped[topic]; !ok {
			order = append(order, topic)
		}
		grouped[topic] = append(grouped[topic], r)
	}

	summaries := make([]domain.TopicSummary, 0, len(order))
	for _, topic := range order {
		attempts := grouped[topic]
		sum, best := 0, attempts[0].Score
		for _, a := range attempts {
			sum += a.Score
			if a.Score > best {
				best = a.Score
			}
		}
		// stable: equal timestamps keep their ascending-pass order
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].CreatedAt.After(attempts[j].CreatedAt)
		})
		avg := float64(sum) / float64(len(attempts))
		summaries = append(summaries, domain.TopicSummary{
			Topic:          topic,
			Attempts:       attempts,
			Count:          len(attempts),
			Average:        round(avg, 2),
			Best:           best,
			MostRecent:     attempts[0],
			AveragePercent: int(math.Round(percentOf(avg, opts.MaxScore))),
			BestPercent:    int(math.Round(percentOf(float64(best), opts.MaxScore))),
		})
	}
	return summaries
}

// ScoreBand buckets a raw score for colour coding.
func ScoreBand(score int) string {
	switch {
	case score >= 25:
		return "strong"
	case score >= 15:
		return "fair"
	default:
		return "weak"
	}
}

// Analytics memoizes the dashboard on a fingerprint of the input records.
type Analytics struct {
	opts AnalyticsOptions

	mu      sync.Mutex
	lastKey uint64
	last    domain.Dashboard
	cached  bool
}

func NewAnalytics(opts AnalyticsOptions) *Analytics {
	return &Analytics{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (a *Analytics) Options() AnalyticsOptions {
	return a.opts
}

// Dashboard aggregates records, reusing the previous result when the input is unchanged.
// The returned slices are shared with the cache and must be treated as read-only.
func (a *Analytics) Dashboard(records []domain.ScoreRecord) domain.Dashboard {
	key := fingerprint(records)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached && a.lastKey == key {
		return a.last
	}

	overall, ok := AggregateOverall(records, a.opts)
	dashboard := domain.Dashboard{Empty: !ok}
	if ok {
		dashboard.Overall = overall
		dashboard.Topics = AggregateByTopic(records, a.opts)
	}
	a.last, a.lastKey, a.cached = dashboard, key, true
	return dashboard
}

func fingerprint(records []domain.ScoreRecord) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)
	for _, r := range records {
		buf = buf[:0]
		buf = append(buf, r.ID...)
		buf = append(buf, 0)
		buf = append(buf, r.Topic...)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, int64(r.Score), 10)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, r.CreatedAt.UnixNano(), 10)
		buf = append(buf, '\n')
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

func sortByTime(records []domain.ScoreRecord) []domain.ScoreRecord {
	ordered := make([]domain.ScoreRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

func topicLabel(topic string) string {
	if topic == "" {
		return domain.UntitledTopic
	}
	return topic
}

func percentOf(value float64, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return value / float64(maxScore) * 100
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
