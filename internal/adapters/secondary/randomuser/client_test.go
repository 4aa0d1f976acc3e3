package randomuser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canned JSON responses

const twoUsersOK = `{
  "results": [
    {
      "gender": "male",
      "name": {"title": "Mr", "first": "John", "last": "Smith"},
      "location": {
        "street": {"number": 1234, "name": "Main St"},
        "city": "Reno",
        "state": "Nevada",
        "country": "United States"
      },
      "email": "john.smith@example.com",
      "dob": {"date": "1985-07-20T09:44:18.674Z", "age": 39},
      "picture": {
        "large": "https://randomuser.me/api/portraits/men/75.jpg",
        "medium": "https://randomuser.me/api/portraits/med/men/75.jpg",
        "thumbnail": "https://randomuser.me/api/portraits/thumb/men/75.jpg"
      }
    },
    {
      "gender": "female",
      "name": {"title": "Ms", "first": "Jane", "last": "Doe"},
      "location": {
        "street": {"number": 9, "name": "Oak Avenue"},
        "city": "Portland",
        "state": "Oregon"
      },
      "dob": {"date": "1990-01-01T00:00:00.000Z", "age": 34},
      "picture": {"large": "https://randomuser.me/api/portraits/women/1.jpg"}
    }
  ],
  "info": {"seed": "abc", "results": 2, "page": 1, "version": "1.4"}
}`

const emptyResults = `{"results": [], "info": {"results": 0}}`

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Results: 20})
}

func TestFetchUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "20", r.URL.Query().Get("results"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoUsersOK))
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).FetchUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, domain.UserRecord{
		Title:       "Mr",
		First:       "John",
		Last:        "Smith",
		Gender:      domain.GenderMale,
		StreetName:  "Main St",
		City:        "Reno",
		State:       "Nevada",
		DateOfBirth: time.Date(1985, 7, 20, 9, 44, 18, 674000000, time.UTC),
		PictureURL:  "https://randomuser.me/api/portraits/men/75.jpg",
	}, users[0])
	assert.Equal(t, "Jane", users[1].First, "order is preserved")
}

func TestFetchUsers_KeepsExistingQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us", r.URL.Query().Get("nat"))
		assert.Equal(t, "5", r.URL.Query().Get("results"))
		_, _ = w.Write([]byte(twoUsersOK))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/?nat=us", Results: 5})
	_, err := c.FetchUsers(context.Background())
	require.NoError(t, err)
}

func TestFetchUsers_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, apperrors.ErrUpstreamStatus},
		{"service unavailable", http.StatusServiceUnavailable, "", apperrors.ErrUpstreamStatus},
		{"malformed json", http.StatusOK, `{"results": [`, apperrors.ErrUpstreamDecode},
		{"html body", http.StatusOK, `<html>oops</html>`, apperrors.ErrUpstreamDecode},
		{"bad date", http.StatusOK, `{"results":[{"dob":{"date":"yesterday"}}]}`, apperrors.ErrUpstreamDecode},
		{"empty results", http.StatusOK, emptyResults, apperrors.ErrNoUsersReturned},
		{"missing results", http.StatusOK, `{}`, apperrors.ErrNoUsersReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			users, err := newTestClient(srv.URL).FetchUsers(context.Background())
			require.Error(t, err)
			assert.Nil(t, users)
			assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchUsers_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).FetchUsers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFetchUsers_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoUsersOK))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).FetchUsers(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("results"))
		_, _ = w.Write([]byte(twoUsersOK))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Ping(context.Background()))
}

func TestPing_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultResults, c.results)
	assert.Same(t, http.DefaultClient, c.http)
}
