package gis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPortal builds a test portal that issues tokens and delegates
// everything else to handle.
func newPortal(t *testing.T, handle http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/sharing/rest/generateToken", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "gisadmin", r.FormValue("username"))
		require.Equal(t, "json", r.FormValue("f"))

		expires := time.Now().Add(2 * time.Hour).UnixMilli()
		fmt.Fprintf(w, `{"token": "test-token", "expires": %d}`, expires)
	})
	mux.HandleFunc("/", handle)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSearchGroupByTitleFound(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sharing/rest/community/groups", r.URL.Path)
		require.Equal(t, "test-token", r.URL.Query().Get("token"))
		require.Equal(t, `title:"GEO 101_101_Map Project_7"`, r.URL.Query().Get("q"))

		fmt.Fprint(w, `{"results": [{"id": "g1", "title": "GEO 101_101_Map Project_7"}]}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	group, err := client.SearchGroupByTitle(context.Background(), "GEO 101_101_Map Project_7")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, "g1", group.ID)
}

func TestSearchGroupByTitleEscapesQuotes(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, `title:"Say \"hi\"_1_A_2"`, r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"results": []}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	group, err := client.SearchGroupByTitle(context.Background(), `Say "hi"_1_A_2`)
	require.NoError(t, err)
	assert.Nil(t, group)
}

func TestSearchGroupByTitleMultipleMatchesPicksFirst(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"id": "first", "title": "T"}, {"id": "second", "title": "T"}]}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	group, err := client.SearchGroupByTitle(context.Background(), "T")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, "first", group.ID)
}

func TestCreateGroup(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sharing/rest/community/createGroup", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "GEO 101_101_Map Project_7", r.FormValue("title"))
		require.Equal(t, "geosync,campus", r.FormValue("tags"))

		fmt.Fprint(w, `{"success": true, "group": {"id": "g9", "title": "GEO 101_101_Map Project_7"}}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	group, err := client.CreateGroup(context.Background(), "GEO 101_101_Map Project_7",
		[]string{"geosync", "campus"})
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, "g9", group.ID)
}

func TestCreateGroupBackendFailure(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	_, err := client.CreateGroup(context.Background(), "T", nil)
	require.Error(t, err)
}

func TestEmbeddedAPIErrorSurfaces(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		// The backend reports errors inside an HTTP 200 response.
		fmt.Fprint(w, `{"error": {"code": 403, "message": "You do not have permissions to access this resource."}}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	_, err := client.SearchGroupByTitle(context.Background(), "T")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not have permissions")
}

func TestGroupMembers(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sharing/rest/community/groups/g1/users", r.URL.Path)
		fmt.Fprint(w, `{"owner": "gisadmin", "admins": ["gisadmin"], "users": ["alice_devorg", "dave_devorg"]}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	members, err := client.GroupMembers(context.Background(), &groupG1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice_devorg", "dave_devorg"}, members)
}

func TestTokenReused(t *testing.T) {
	var tokenRequests int

	mux := http.NewServeMux()
	mux.HandleFunc("/sharing/rest/generateToken", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		expires := time.Now().Add(2 * time.Hour).UnixMilli()
		fmt.Fprintf(w, `{"token": "test-token", "expires": %d}`, expires)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, "gisadmin", "pw")

	for i := 0; i < 3; i++ {
		_, err := client.SearchGroupByTitle(context.Background(), "T")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenRequests)
}
