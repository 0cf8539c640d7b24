// Package jql builds the tracker query strings used by the QA dashboard.
// All builders are pure string functions; inclusion and exclusion sets are
// passed in by the caller.
package jql

import (
	"fmt"
	"regexp"
	"strings"
)

var plainToken = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// BuildDefectsQuery returns the query for all defects created in the period.
// No status filter: canceled issues are fetched too and classified downstream.
func BuildDefectsQuery(projectKey, startDate, endDate, bugType, subBugType string) string {
	return fmt.Sprintf(
		`project = %s AND issuetype in (%s, %s) AND created >= "%s" AND created <= "%s" ORDER BY created ASC`,
		normalizeProjectKey(projectKey),
		quoteToken(bugType),
		quoteToken(subBugType),
		truncateDate(startDate),
		truncateDate(endDate),
	)
}

// BuildStatusTimeQuery returns the query for issues that entered the testable
// phase: excluded issue types never reach QA and excluded statuses are the
// backlog/dev states that precede it.
func BuildStatusTimeQuery(projectKey, startDate, endDate string, excludedTypes, excludedStatuses []string) string {
	types := make([]string, 0, len(excludedTypes))
	for _, t := range excludedTypes {
		types = append(types, quoteToken(t))
	}
	statuses := make([]string, 0, len(excludedStatuses))
	for _, s := range excludedStatuses {
		statuses = append(statuses, fmt.Sprintf("%q", s))
	}
	return fmt.Sprintf(
		`project = %s AND issuetype not in (%s) AND status not in (%s) AND created >= "%s" AND created <= "%s" ORDER BY created ASC`,
		normalizeProjectKey(projectKey),
		strings.Join(types, ", "),
		strings.Join(statuses, ", "),
		truncateDate(startDate),
		truncateDate(endDate),
	)
}

func normalizeProjectKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// truncateDate reduces an ISO timestamp to its date part
func truncateDate(date string) string {
	date = strings.TrimSpace(date)
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// quoteToken quotes names the query language would otherwise split,
// such as hyphenated or multi-word issue types
func quoteToken(token string) string {
	if plainToken.MatchString(token) {
		return token
	}
	return fmt.Sprintf("%q", token)
}
