// Package gis is a REST client for the GIS collaboration platform's group
// directory: search, creation, member listing and bulk membership changes.
package gis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/geosync-io/geosync/internal/models"
)

// Client authenticates against the portal with username/password and
// carries the issued token on every call.
type Client struct {
	rest     *resty.Client
	portal   string
	username string
	password string

	token        string
	tokenExpires time.Time
}

// NewClient creates a client for the given portal URL, e.g.
// "https://devorg.maps.arcgis.com".
func NewClient(portalURL, username, password string) *Client {
	rest := resty.New().SetBaseURL(strings.TrimRight(portalURL, "/") + "/sharing/rest")

	return &Client{
		rest:     rest,
		portal:   portalURL,
		username: username,
		password: password,
	}
}

// apiError is the structured error the backend embeds in otherwise-OK
// responses.
type apiError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *apiError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// ensureToken authenticates when no token is held or the held one is
// about to expire.
func (c *Client) ensureToken(ctx context.Context) error {
	if len(c.token) > 0 && time.Until(c.tokenExpires) > time.Minute {
		return nil
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   c.username,
			"password":   c.password,
			"referer":    c.portal,
			"expiration": "120",
			"f":          "json",
		}).
		Post("generateToken")
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("token request failed with status %d", resp.StatusCode())
	}

	var body struct {
		Token   string    `json:"token"`
		Expires int64     `json:"expires"`
		Error   *apiError `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if body.Error != nil {
		return fmt.Errorf("generating token: %w", body.Error)
	}
	if len(body.Token) == 0 {
		return fmt.Errorf("token response contained no token")
	}

	c.token = body.Token
	c.tokenExpires = time.UnixMilli(body.Expires)

	logrus.WithFields(logrus.Fields{
		"username": c.username,
		"portal":   c.portal,
	}).Debug("Authenticated with GIS portal")

	return nil
}

// do issues one authenticated call and decodes the response into out.
// Backend-reported errors embedded in OK responses are surfaced as errors.
func (c *Client) do(ctx context.Context, method, path string, form map[string]string, out any) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	req := c.rest.R().
		SetContext(ctx).
		SetQueryParam("f", "json").
		SetQueryParam("token", c.token)
	if len(form) > 0 {
		req.SetFormData(form)
	}

	resp, err := c.execute(req, method, path)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s failed with status %d", path, resp.StatusCode())
	}

	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Error != nil {
		return fmt.Errorf("%s: %w", path, envelope.Error)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	switch method {
	case "GET":
		return req.Get(path)
	case "POST":
		return req.Post(path)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}
}

// escapeQueryString escapes characters meaningful to the backend's search
// query syntax so a title matches literally.
func escapeQueryString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SearchGroupByTitle looks up a group by exact title. Returns nil without
// error when no group matches. Titles are unique by construction; should
// the index ever return several matches the first is used and the
// condition is logged.
func (c *Client) SearchGroupByTitle(ctx context.Context, title string) (*models.Group, error) {
	query := fmt.Sprintf(`title:"%s"`, escapeQueryString(title))

	logrus.WithFields(logrus.Fields{
		"query": query,
	}).Debug("Searching for GIS group")

	var body struct {
		Results []models.Group `json:"results"`
	}
	if err := c.do(ctx, "GET", "community/groups", map[string]string{"q": query}, &body); err != nil {
		return nil, fmt.Errorf("searching for group %q: %w", title, err)
	}

	if len(body.Results) == 0 {
		return nil, nil
	}
	if len(body.Results) > 1 {
		logrus.WithFields(logrus.Fields{
			"title":   title,
			"matches": len(body.Results),
		}).Warn("Multiple groups share a title that should be unique; using the first match")
	}
	return &body.Results[0], nil
}

// CreateGroup creates a group with the given title and tags. Creation is
// not retried; a failure surfaces to the caller.
func (c *Client) CreateGroup(ctx context.Context, title string, tags []string) (*models.Group, error) {
	logrus.WithFields(logrus.Fields{
		"title": title,
		"tags":  tags,
	}).Info("Creating GIS group")

	var body struct {
		Success bool         `json:"success"`
		Group   models.Group `json:"group"`
	}
	form := map[string]string{
		"title": title,
		"tags":  strings.Join(tags, ","),
	}
	if err := c.do(ctx, "POST", "community/createGroup", form, &body); err != nil {
		return nil, fmt.Errorf("creating group %q: %w", title, err)
	}
	if !body.Success || len(body.Group.ID) == 0 {
		return nil, fmt.Errorf("creating group %q: backend reported failure", title)
	}

	return &body.Group, nil
}

// GroupMembers returns the GIS usernames currently in the group. Owner
// and admins are not part of the managed membership.
func (c *Client) GroupMembers(ctx context.Context, group *models.Group) ([]string, error) {
	var body struct {
		Owner  string   `json:"owner"`
		Admins []string `json:"admins"`
		Users  []string `json:"users"`
	}
	path := fmt.Sprintf("community/groups/%s/users", group.ID)
	if err := c.do(ctx, "GET", path, nil, &body); err != nil {
		return nil, fmt.Errorf("fetching members of group %s: %w", group.NameAndID(), err)
	}
	return body.Users, nil
}
