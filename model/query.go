package model

import (
	"strings"
	"time"
)

type TrendsQuery struct {
	Topic           string
	FetchWindowDays int
}

// ToGithubQuery build the search expression sent to the Github search API
// the cutoff is a calendar date (not time-of-day), repositories created strictly after it are returned
func (q TrendsQuery) ToGithubQuery(now time.Time) string {
	cutoff := now.AddDate(0, 0, -q.FetchWindowDays).Format("2006-01-02")

	var githubQuery strings.Builder

	if q.Topic != "" {
		githubQuery.WriteString("topic:" + q.Topic + " ")
	}

	githubQuery.WriteString("created:>" + cutoff)

	return strings.TrimSpace(githubQuery.String())
}
