package gis

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosync-io/geosync/internal/models"
)

var groupG1 = models.Group{ID: "g1", Title: "GEO 101_101_Map Project_7"}

func gisNames(count int) []string {
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		names = append(names, fmt.Sprintf("user%02d_devorg", i))
	}
	return names
}

func TestModifyUsersBatches(t *testing.T) {
	var batches [][]string

	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sharing/rest/community/groups/g1/addUsers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		batches = append(batches, strings.Split(r.FormValue("users"), ","))
		fmt.Fprint(w, `{"notAdded": []}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	report, err := client.ModifyUsers(context.Background(), &groupG1, gisNames(45), ModeAdd)
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 20)
	assert.Len(t, batches[1], 20)
	assert.Len(t, batches[2], 5)

	assert.Equal(t, 45, report.Submitted)
	assert.Equal(t, 45, report.Applied())
	assert.Empty(t, report.NotApplied)
}

func TestModifyUsersAbortsOnBatchFailure(t *testing.T) {
	var calls int

	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"notAdded": []}`)
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	report, err := client.ModifyUsers(context.Background(), &groupG1, gisNames(45), ModeAdd)
	require.Error(t, err)
	assert.Nil(t, report)

	// The third batch is never attempted.
	assert.Equal(t, 2, calls)
}

func TestModifyUsersEmptyListMakesNoCall(t *testing.T) {
	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no API call expected for an empty username list")
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	report, err := client.ModifyUsers(context.Background(), &groupG1, nil, ModeRemove)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Submitted)
	assert.Empty(t, report.NotApplied)
}

func TestModifyUsersAggregatesNotApplied(t *testing.T) {
	var calls int

	server := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/sharing/rest/community/groups/g1/removeUsers", r.URL.Path)
		switch calls {
		case 1:
			fmt.Fprint(w, `{"notRemoved": ["user03_devorg"]}`)
		default:
			fmt.Fprint(w, `{"notRemoved": ["user21_devorg", "user24_devorg"]}`)
		}
	})

	client := NewClient(server.URL, "gisadmin", "pw")

	report, err := client.ModifyUsers(context.Background(), &groupG1, gisNames(25), ModeRemove)
	require.NoError(t, err)

	assert.Equal(t, 25, report.Submitted)
	assert.Equal(t, 22, report.Applied())
	assert.Equal(t, []string{"user03_devorg", "user21_devorg", "user24_devorg"}, report.NotApplied)
}

func TestModeText(t *testing.T) {
	assert.Equal(t, "add", ModeAdd.String())
	assert.Equal(t, "added", ModeAdd.Past())
	assert.Equal(t, "adding", ModeAdd.Gerund())
	assert.Equal(t, "to", ModeAdd.Preposition())
	assert.Equal(t, "addUsers", ModeAdd.endpoint())
	assert.Equal(t, "notAdded", ModeAdd.notAppliedKey())

	assert.Equal(t, "remove", ModeRemove.String())
	assert.Equal(t, "removed", ModeRemove.Past())
	assert.Equal(t, "removing", ModeRemove.Gerund())
	assert.Equal(t, "from", ModeRemove.Preposition())
	assert.Equal(t, "removeUsers", ModeRemove.endpoint())
	assert.Equal(t, "notRemoved", ModeRemove.notAppliedKey())
}
