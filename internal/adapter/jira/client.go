// Package jira implements ports.IssueTracker on top of the Jira Cloud REST
// API via github.com/andygrunwald/go-jira.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

const createdLayout = "2006-01-02T15:04:05.000-0700"

// Client is the Jira-backed issue tracker. All calls are single-attempt;
// failures propagate to the caller instead of being retried.
type Client struct {
	api    *jira.Client
	logger *logrus.Logger
}

// NewClient creates a tracker client from configuration. Incomplete
// credentials are a configuration error, reported as such rather than
// surfacing later as a confusing 401.
func NewClient(cfg config.TrackerConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.UserEmail == "" || cfg.APIToken == "" {
		return nil, apperror.NewTrackerConfig("tracker base URL, user email and API token must be configured")
	}

	tp := &jira.BasicAuthTransport{
		Username: cfg.UserEmail,
		Password: cfg.APIToken,
	}
	httpClient := tp.Client()
	httpClient.Timeout = cfg.RequestTimeout

	api, err := jira.NewClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, apperror.NewTrackerConfig(fmt.Sprintf("invalid tracker base URL: %v", err))
	}

	return &Client{
		api:    api,
		logger: logger,
	}, nil
}

// SearchIssues runs the query and follows the startAt/total pagination until
// the last page, concatenating results in server order
func (c *Client) SearchIssues(ctx context.Context, query string, fields []string, pageSize int) ([]domain.IssueRecord, error) {
	records := make([]domain.IssueRecord, 0, pageSize)
	startAt := 0
	for {
		opts := &jira.SearchOptions{
			StartAt:    startAt,
			MaxResults: pageSize,
			Fields:     fields,
		}
		page, resp, err := c.api.Issue.SearchWithContext(ctx, query, opts)
		if err != nil {
			return nil, c.mapError(resp, err)
		}
		for i := range page {
			records = append(records, issueRecord(&page[i]))
		}
		if len(page) == 0 {
			break
		}
		startAt += len(page)
		if resp != nil && startAt >= resp.Total {
			break
		}
	}

	c.logger.WithFields(logrus.Fields{
		"issues": len(records),
		"pages":  (len(records) + pageSize - 1) / pageSize,
	}).Debug("tracker search complete")

	return records, nil
}

// GetIssue retrieves a single issue with its change history expanded
func (c *Client) GetIssue(ctx context.Context, key string) (*ports.FullIssue, error) {
	issue, resp, err := c.api.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Expand: "changelog"})
	if err != nil {
		return nil, c.mapError(resp, err)
	}

	full := &ports.FullIssue{Key: issue.Key}
	if issue.Fields != nil {
		full.Type = issue.Fields.Type.Name
		full.Summary = issue.Fields.Summary
		if issue.Fields.Status != nil {
			full.Status = issue.Fields.Status.Name
		}
		if created := time.Time(issue.Fields.Created); !created.IsZero() {
			full.Created = created.Format(createdLayout)
		}
	}
	if issue.Changelog != nil {
		full.Histories = make([]domain.ChangeHistory, 0, len(issue.Changelog.Histories))
		for _, history := range issue.Changelog.Histories {
			entry := domain.ChangeHistory{Created: history.Created}
			for _, item := range history.Items {
				entry.Items = append(entry.Items, domain.ChangeItem{
					Field:      item.Field,
					FromString: item.FromString,
					ToString:   item.ToString,
				})
			}
			full.Histories = append(full.Histories, entry)
		}
	}
	return full, nil
}

// GetProject retrieves the project's key and name. Projects the credentials
// cannot see degrade to {key, ""} so the dashboard can still render.
func (c *Client) GetProject(ctx context.Context, key string) (*ports.Project, error) {
	project, resp, err := c.api.Project.GetWithContext(ctx, key)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			return &ports.Project{Key: key}, nil
		}
		return nil, c.mapError(resp, err)
	}
	return &ports.Project{Key: project.Key, Name: project.Name}, nil
}

// ListProjects lists the projects visible to the configured credentials
func (c *Client) ListProjects(ctx context.Context) ([]ports.Project, error) {
	list, resp, err := c.api.Project.GetListWithContext(ctx)
	if err != nil {
		return nil, c.mapError(resp, err)
	}
	projects := make([]ports.Project, 0, len(*list))
	for _, p := range *list {
		projects = append(projects, ports.Project{Key: p.Key, Name: p.Name})
	}
	return projects, nil
}

// GetBoards lists a project's agile boards, following pagination
func (c *Client) GetBoards(ctx context.Context, projectKey string) ([]ports.Board, error) {
	boards := make([]ports.Board, 0, 8)
	startAt := 0
	for {
		opts := &jira.BoardListOptions{
			ProjectKeyOrID: projectKey,
			SearchOptions: jira.SearchOptions{
				StartAt:    startAt,
				MaxResults: 50,
			},
		}
		list, resp, err := c.api.Board.GetAllBoardsWithContext(ctx, opts)
		if err != nil {
			return nil, c.mapError(resp, err)
		}
		for _, board := range list.Values {
			boards = append(boards, ports.Board{ID: board.ID, Name: board.Name, Type: board.Type})
		}
		if list.IsLast || len(list.Values) == 0 {
			break
		}
		startAt += len(list.Values)
	}
	return boards, nil
}

// GetSprints lists a board's sprints filtered by state
func (c *Client) GetSprints(ctx context.Context, boardID int, state domain.SprintState) ([]domain.SprintInfo, error) {
	list, resp, err := c.api.Board.GetAllSprintsWithOptionsWithContext(ctx, boardID, &jira.GetAllSprintsOptions{
		State: string(state),
	})
	if err != nil {
		return nil, c.mapError(resp, err)
	}

	sprints := make([]domain.SprintInfo, 0, len(list.Values))
	for _, sprint := range list.Values {
		info := domain.SprintInfo{
			ID:    sprint.ID,
			Name:  sprint.Name,
			State: sprint.State,
		}
		if sprint.StartDate != nil {
			info.StartDate = *sprint.StartDate
		}
		if sprint.EndDate != nil {
			info.EndDate = *sprint.EndDate
		}
		sprints = append(sprints, info)
	}
	return sprints, nil
}

// CreateIssue creates an issue and returns its key
func (c *Client) CreateIssue(ctx context.Context, issue ports.NewIssue) (string, error) {
	fields := &jira.IssueFields{
		Project:     jira.Project{Key: issue.ProjectKey},
		Type:        jira.IssueType{Name: issue.Type},
		Summary:     issue.Summary,
		Description: issue.Description,
	}
	if issue.ParentKey != "" {
		fields.Parent = &jira.Parent{Key: issue.ParentKey}
	}

	created, resp, err := c.api.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return "", c.mapError(resp, err)
	}
	return created.Key, nil
}

// mapError translates tracker HTTP failures into the typed taxonomy. 401 and
// 403 both surface as a project-access failure; 400 means the query itself
// was rejected.
func (c *Client) mapError(resp *jira.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return apperror.NewTrackerAuth("tracker rejected the configured credentials")
		case http.StatusForbidden:
			return apperror.NewTrackerAuth("tracker denied access to the requested resource")
		case http.StatusBadRequest:
			return apperror.NewInvalidQuery(fmt.Sprintf("tracker rejected the query: %v", err))
		}
	}
	return fmt.Errorf("tracker request failed: %w", err)
}

func issueRecord(issue *jira.Issue) domain.IssueRecord {
	record := domain.IssueRecord{Key: issue.Key}
	if issue.Fields != nil {
		record.Type = issue.Fields.Type.Name
		record.Summary = issue.Fields.Summary
		if issue.Fields.Status != nil {
			record.Status = issue.Fields.Status.Name
		}
		record.Created = time.Time(issue.Fields.Created)
	}
	return record
}
