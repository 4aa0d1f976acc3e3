// Package randomuser provides a client for fetching synthetic user profiles
// from the Random User API.
package randomuser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/lorrc/user-directory/internal/core/ports"
)

const (
	DefaultBaseURL = "https://randomuser.me/api/"
	DefaultResults = 20

	// maxBodyBytes bounds the response body read from the API.
	maxBodyBytes = 8 << 20
)

// Config holds the client settings.
type Config struct {
	BaseURL    string
	Results    int
	HTTPClient *http.Client
}

// Client fetches users from the Random User API.
type Client struct {
	baseURL string
	results int
	http    *http.Client
}

var _ ports.UserSource = (*Client)(nil)

// NewClient creates a Random User API client. Zero values fall back to the
// public endpoint, 20 results and http.DefaultClient.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		results: cfg.Results,
		http:    cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.results <= 0 {
		c.results = DefaultResults
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// FetchUsers requests one batch of users. Any transport, status or decode
// failure, and an empty batch, is reported as ErrUpstreamUnavailable.
func (c *Client) FetchUsers(ctx context.Context) ([]domain.UserRecord, error) {
	users, err := c.fetch(ctx, c.results)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", apperrors.UpstreamError(err))
	}
	return users, nil
}

// Ping checks that the API answers with at least one user.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.fetch(ctx, 1); err != nil {
		return fmt.Errorf("ping: %w", apperrors.UpstreamError(err))
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, results int) ([]domain.UserRecord, error) {
	body, err := c.do(ctx, results)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamDecode, err)
	}

	if len(resp.Results) == 0 {
		return nil, apperrors.ErrNoUsersReturned
	}

	users := make([]domain.UserRecord, len(resp.Results))
	for i, r := range resp.Results {
		users[i] = r.toDomain()
	}
	return users, nil
}

func (c *Client) do(ctx context.Context, results int) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("results", strconv.Itoa(results))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUpstreamStatus, resp.StatusCode)
	}

	return body, nil
}

// API response types

type apiResponse struct {
	Results []apiUser `json:"results"`
}

type apiUser struct {
	Gender string `json:"gender"`
	Name   struct {
		Title string `json:"title"`
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Location struct {
		Street struct {
			Name string `json:"name"`
		} `json:"street"`
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"location"`
	DOB struct {
		Date time.Time `json:"date"`
	} `json:"dob"`
	Picture struct {
		Large string `json:"large"`
	} `json:"picture"`
}

func (u apiUser) toDomain() domain.UserRecord {
	return domain.UserRecord{
		Title:       u.Name.Title,
		First:       u.Name.First,
		Last:        u.Name.Last,
		Gender:      domain.Gender(u.Gender),
		StreetName:  u.Location.Street.Name,
		City:        u.Location.City,
		State:       u.Location.State,
		DateOfBirth: u.DOB.Date,
		PictureURL:  u.Picture.Large,
	}
}
