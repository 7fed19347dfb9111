// Package lms is a REST client for the learning-management system. All
// collection endpoints are cursor-paginated; the client aggregates every
// page before decoding.
package lms

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/geosync-io/geosync/internal/models"
)

// Client talks to the LMS REST API with bearer token authorization.
type Client struct {
	rest *resty.Client
}

// NewClient creates a client for the given API root, e.g.
// "https://school.example.com/api/v1".
func NewClient(apiBaseURL, token string) *Client {
	rest := resty.New().
		SetBaseURL(apiBaseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")

	return &Client{rest: rest}
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) (*resty.Response, error) {
	req := c.rest.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	return resp, nil
}

// GetOutcome looks up outcome metadata by id. Returns nil without error
// when the response carries no outcome record.
func (c *Client) GetOutcome(ctx context.Context, outcomeID int) (*models.Outcome, error) {
	resp, err := c.get(ctx, fmt.Sprintf("outcomes/%d", outcomeID), nil)
	if err != nil {
		return nil, err
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}

	outcomes, err := decodeRecords[models.Outcome](records)
	if err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, nil
	}
	return &outcomes[0], nil
}

// GetCourse fetches a single course by id.
func (c *Client) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	resp, err := c.get(ctx, fmt.Sprintf("courses/%d", courseID), nil)
	if err != nil {
		return nil, err
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}

	courses, err := decodeRecords[models.Course](records)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course %d not found in response", courseID)
	}
	return &courses[0], nil
}

// ListCourseAssignments fetches every assignment of a course.
func (c *Client) ListCourseAssignments(ctx context.Context, courseID int) ([]models.Assignment, error) {
	resp, err := c.get(ctx, fmt.Sprintf("courses/%d/assignments", courseID), nil)
	if err != nil {
		return nil, err
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}
	return decodeRecords[models.Assignment](records)
}

// ListCourseUsers fetches the enrolled users of a course, optionally
// filtered by enrollment type ("teacher", "student", ...). An empty type
// returns the full roster.
func (c *Client) ListCourseUsers(ctx context.Context, courseID int, enrollmentType string) ([]models.Enrollment, error) {
	query := map[string]string{"include[]": "email"}
	if len(enrollmentType) > 0 {
		query["enrollment_type"] = enrollmentType
	}

	resp, err := c.get(ctx, fmt.Sprintf("courses/%d/users", courseID), query)
	if err != nil {
		return nil, err
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}
	return decodeRecords[models.Enrollment](records)
}

// ListOutcomeGroupLinks fetches the outcome links of a course.
func (c *Client) ListOutcomeGroupLinks(ctx context.Context, courseID int) ([]models.OutcomeGroupLink, error) {
	resp, err := c.get(ctx, fmt.Sprintf("courses/%d/outcome_group_links", courseID), nil)
	if err != nil {
		return nil, err
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}
	return decodeRecords[models.OutcomeGroupLink](records)
}

// GetCoursePage fetches a named content page of a course. A 404 means the
// page does not exist and returns nil without error, so callers can fall
// back to static configuration.
func (c *Client) GetCoursePage(ctx context.Context, courseID int, pageName string) (*models.Page, error) {
	resp, err := c.get(ctx, fmt.Sprintf("courses/%d/pages/%s", courseID, pageName), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	records, err := c.collectPages(ctx, resp)
	if err != nil {
		return nil, err
	}

	pages, err := decodeRecords[models.Page](records)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}
