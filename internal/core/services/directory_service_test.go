package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/lorrc/user-directory/internal/core/mocks"
	"github.com/lorrc/user-directory/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Directory
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.Directory)}
}

func (f *fakeSessionStore) Get(id string) (*domain.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return dir, nil
}

func (f *fakeSessionStore) GetOrCreate(id string) *domain.Directory {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir, ok := f.sessions[id]
	if !ok {
		dir = domain.NewDirectory()
		f.sessions[id] = dir
	}
	return dir
}

func (f *fakeSessionStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func testUsers() []domain.UserRecord {
	return []domain.UserRecord{
		{Title: "Mr", First: "John", Last: "Smith", StreetName: "Main St", City: "Reno", State: "Nevada"},
		{Title: "Ms", First: "Jane", Last: "Doe", StreetName: "Oak Avenue", City: "Portland", State: "Oregon"},
		{Title: "Dr", First: "Ana", Last: "Lopez", StreetName: "Elm Road", City: "Austin", State: "Texas"},
	}
}

func newTestService(source *mocks.MockUserSource, observer *mocks.MockFetchObserver) (*DirectoryService, *fakeSessionStore) {
	store := newFakeSessionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var obs ports.FetchObserver
	if observer != nil {
		obs = observer
	}
	svc := NewDirectoryService(source, store, obs, logger)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, store
}

func TestDirectoryService_Load_StoresUsers(t *testing.T) {
	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(testUsers(), nil).Once()
	observer := mocks.NewMockFetchObserver()
	observer.On("ObserveFetch", FetchOutcomeSuccess, 3).Once()

	svc, store := newTestService(source, observer)

	users, err := svc.Load(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, testUsers(), users)

	dir, err := store.Get("session-1")
	require.NoError(t, err)
	assert.True(t, dir.Loaded())
	assert.Equal(t, testUsers(), dir.Users())

	source.AssertExpectations(t)
	observer.AssertExpectations(t)
}

func TestDirectoryService_Load_FailureKeepsPreviousState(t *testing.T) {
	upstreamErr := apperrors.UpstreamError(errors.New("connection refused"))

	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(testUsers(), nil).Once()
	source.On("FetchUsers", mock.Anything).Return(nil, upstreamErr).Once()
	observer := mocks.NewMockFetchObserver()
	observer.On("ObserveFetch", FetchOutcomeSuccess, 3).Once()
	observer.On("ObserveFetch", FetchOutcomeFailure, 0).Once()

	svc, store := newTestService(source, observer)

	_, err := svc.Load(context.Background(), "session-1")
	require.NoError(t, err)

	_, err = svc.Load(context.Background(), "session-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)

	dir, err := store.Get("session-1")
	require.NoError(t, err)
	assert.Equal(t, testUsers(), dir.Users())

	source.AssertExpectations(t)
	observer.AssertExpectations(t)
}

func TestDirectoryService_Load_FailureDoesNotCreateSession(t *testing.T) {
	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(nil, apperrors.UpstreamError(apperrors.ErrNoUsersReturned))

	svc, store := newTestService(source, nil)

	_, err := svc.Load(context.Background(), "session-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoUsersReturned)
	assert.Equal(t, 0, store.Len())
}

func TestDirectoryService_Load_RequiresSession(t *testing.T) {
	source := mocks.NewMockUserSource()
	svc, _ := newTestService(source, nil)

	_, err := svc.Load(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrSessionRequired)
	source.AssertNotCalled(t, "FetchUsers", mock.Anything)
}

func TestDirectoryService_Search(t *testing.T) {
	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(testUsers(), nil).Once()
	svc, _ := newTestService(source, nil)

	_, err := svc.Load(context.Background(), "session-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"John", "Jane", "Ana"}},
		{"name match", "john", []string{"John"}},
		{"address match", "RENO", []string{"John"}},
		{"shared substring keeps order", "o", []string{"John", "Jane", "Ana"}},
		{"no match", "xyz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := svc.Search(context.Background(), "session-1", tt.query)
			require.NoError(t, err)

			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.First)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	source.AssertNumberOfCalls(t, "FetchUsers", 1)
}

func TestDirectoryService_Search_UnknownSessionIsEmpty(t *testing.T) {
	svc, _ := newTestService(mocks.NewMockUserSource(), nil)

	users, err := svc.Search(context.Background(), "missing", "")
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = svc.Search(context.Background(), "", "john")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDirectoryService_SessionsAreIsolated(t *testing.T) {
	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(testUsers()[:1], nil).Once()
	source.On("FetchUsers", mock.Anything).Return(testUsers()[1:], nil).Once()
	svc, _ := newTestService(source, nil)

	_, err := svc.Load(context.Background(), "a")
	require.NoError(t, err)
	_, err = svc.Load(context.Background(), "b")
	require.NoError(t, err)

	a, err := svc.Search(context.Background(), "a", "")
	require.NoError(t, err)
	b, err := svc.Search(context.Background(), "b", "")
	require.NoError(t, err)

	assert.Len(t, a, 1)
	assert.Len(t, b, 2)
}

func TestDirectoryService_LoadedAt(t *testing.T) {
	source := mocks.NewMockUserSource()
	source.On("FetchUsers", mock.Anything).Return(testUsers(), nil).Once()
	svc, store := newTestService(source, nil)

	_, ok := svc.LoadedAt(context.Background(), "session-1")
	assert.False(t, ok, "unknown session")

	store.GetOrCreate("session-2")
	_, ok = svc.LoadedAt(context.Background(), "session-2")
	assert.False(t, ok, "session that never loaded")

	_, err := svc.Load(context.Background(), "session-1")
	require.NoError(t, err)

	at, ok := svc.LoadedAt(context.Background(), "session-1")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), at)

	_, ok = svc.LoadedAt(context.Background(), "")
	assert.False(t, ok)
}
