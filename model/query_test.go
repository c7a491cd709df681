package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestToGithubQuery will test the search expression builder, in particular the creation date cutoff
func TestToGithubQuery(t *testing.T) {
	tests := []struct {
		name          string
		query         TrendsQuery
		now           time.Time
		expectedQuery string
	}{
		{
			name:          "Topic with seven days window",
			query:         TrendsQuery{Topic: "ai", FetchWindowDays: 7},
			now:           time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC),
			expectedQuery: "topic:ai created:>2026-03-03",
		},
		{
			name:          "Cutoff crosses a month boundary",
			query:         TrendsQuery{Topic: "ai", FetchWindowDays: 7},
			now:           time.Date(2026, 1, 3, 0, 30, 0, 0, time.UTC),
			expectedQuery: "topic:ai created:>2025-12-27",
		},
		{
			name:          "Cutoff ignores the time of day",
			query:         TrendsQuery{Topic: "ai", FetchWindowDays: 7},
			now:           time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC),
			expectedQuery: "topic:ai created:>2026-03-03",
		},
		{
			name:          "Without topic only the cutoff remains",
			query:         TrendsQuery{FetchWindowDays: 7},
			now:           time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			expectedQuery: "created:>2026-03-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedQuery, tt.query.ToGithubQuery(tt.now))
		})
	}
}
