// Package tracker talks to a Jira Cloud site so items can be linked to
// the issues that track them.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	siteURL string
	email   string
	token   func() (string, error)
	hc      *http.Client
}

// New builds a client. token is called per request so a rotated
// keychain entry takes effect without a restart.
func New(siteURL, email string, token func() (string, error)) *Client {
	return &Client{
		siteURL: strings.TrimRight(siteURL, "/"),
		email:   email,
		token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.siteURL != "" && c.email != ""
}

type IssueFields struct {
	Summary string `json:"summary"`
	Status  struct {
		Name string `json:"name"`
	} `json:"status"`
}

type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

type searchResponse struct {
	Issues []Issue `json:"issues"`
}

func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tracker not configured")
	}
	if maxResults <= 0 {
		maxResults = 25
	}

	body, err := json.Marshal(searchRequest{
		JQL:        jql,
		MaxResults: maxResults,
		Fields:     []string{"summary", "status"},
	})
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/search/jql", body, &out); err != nil {
		return nil, err
	}
	return out.Issues, nil
}

func (c *Client) GetIssue(ctx context.Context, key string) (Issue, error) {
	var issue Issue
	if !c.Configured() {
		return issue, fmt.Errorf("tracker not configured")
	}
	if strings.TrimSpace(key) == "" {
		return issue, fmt.Errorf("issue key is empty")
	}
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "?fields=summary,status"
	if err := c.do(ctx, http.MethodGet, path, nil, &issue); err != nil {
		return issue, err
	}
	return issue, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	token, err := c.token()
	if err != nil {
		return fmt.Errorf("tracker token: %w", err)
	}

	var rdr *bytes.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.siteURL+path, rdr)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.email, token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("tracker auth failed (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tracker request %s %s: status %d", method, path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
