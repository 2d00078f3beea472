package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/storage/remote"
	"selectclass/internal/storage/remote/remotetest"
	"selectclass/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler) *remote.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := remote.New(srv.URL+"/", "", 2*time.Second)
	require.NoError(t, err)

	return c
}

func TestClientRoundTrip(t *testing.T) {
	mem := remotetest.NewMemory()
	c := newClient(t, mem.Handler())
	ctx := context.Background()

	exp := models.Expense{ID: "e1", Title: "Aluguel", Amount: 1200}
	require.NoError(t, c.Put(ctx, remote.Join(remote.PathExpenses, "e1"), exp))
	assert.True(t, mem.Has("v1/expenses/e1"))

	var got models.Expense
	found, err := c.Get(ctx, remote.Join(remote.PathExpenses, "e1"), &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Aluguel", got.Title)

	list, err := remote.GetCollection[models.Expense](ctx, c, remote.PathExpenses)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.Delete(ctx, remote.Join(remote.PathExpenses, "e1")))
	found, err = c.Get(ctx, remote.Join(remote.PathExpenses, "e1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientMissingCollectionIsEmpty(t *testing.T) {
	c := newClient(t, remotetest.NewMemory().Handler())

	list, err := remote.GetCollection[models.Student](context.Background(), c, remote.PathStudents)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestClientReportsFailures(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Get(context.Background(), "v1/students", &[]models.Student{})
	assert.True(t, errors.Is(err, response.ErrStoreUnavailable))

	err = c.Put(context.Background(), "v1/students/1", models.Student{ID: "1"})
	assert.True(t, errors.Is(err, response.ErrStoreUnavailable))
}

func TestClientNotFoundStatus(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())

	var s models.Settings
	found, err := c.Get(context.Background(), remote.PathSettings, &s)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientSendsAuthAndSuffix(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.URL.Query().Get("auth")
		_, _ = w.Write([]byte(`{"user":"admin","pass":"1234"}`))
	}))
	defer srv.Close()

	c, err := remote.New(srv.URL, "secret-token", time.Second)
	require.NoError(t, err)

	var creds models.Credentials
	found, err := c.Get(context.Background(), remote.PathCredentials, &creds)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "/v1/config/credentials.json", gotPath)
	assert.Equal(t, "secret-token", gotAuth)
	assert.Equal(t, "admin", creds.User)
}

func TestGetCollectionAcceptsArrays(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[null, {"id":"1","name":"Ana"}, {"id":"2","name":"Bia"}]`))
	}))

	list, err := remote.GetCollection[models.Student](context.Background(), c, remote.PathStudents)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := remote.New("ftp://example.com", "", time.Second)
	assert.Error(t, err)
}
