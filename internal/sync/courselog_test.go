package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runStart = time.Date(2026, time.August, 29, 14, 30, 5, 0, time.UTC)

func TestCourseLogsAppendWritesHeaderOnce(t *testing.T) {
	logs, err := NewCourseLogs(t.TempDir(), runStart)
	require.NoError(t, err)

	require.NoError(t, logs.Append(101, "first section\n"))
	require.NoError(t, logs.Append(101, "second section\n"))
	require.NoError(t, logs.Close())

	content, err := logs.Read(101)
	require.NoError(t, err)
	assert.Equal(t,
		"Running at: 02:30:05 PM on August 29, 2026\n\n"+
			"first section\nsecond section\n",
		content)
}

func TestCourseLogsReadMissingCourse(t *testing.T) {
	logs, err := NewCourseLogs(t.TempDir(), runStart)
	require.NoError(t, err)

	content, err := logs.Read(999)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestCourseLogsCourseIDsSorted(t *testing.T) {
	logs, err := NewCourseLogs(t.TempDir(), runStart)
	require.NoError(t, err)
	defer logs.Close()

	require.NoError(t, logs.Append(300, "c\n"))
	require.NoError(t, logs.Append(100, "a\n"))
	require.NoError(t, logs.Append(200, "b\n"))

	assert.Equal(t, []int{100, 200, 300}, logs.CourseIDs())
}

func TestCourseLogsRenameAddsRunStamp(t *testing.T) {
	dir := t.TempDir()
	logs, err := NewCourseLogs(dir, runStart)
	require.NoError(t, err)

	require.NoError(t, logs.Append(101, "section\n"))
	require.NoError(t, logs.Close())
	require.NoError(t, logs.Rename(101))

	_, err = os.Stat(logs.Path(101))
	assert.True(t, os.IsNotExist(err))

	rotated := filepath.Join(dir, "courses", "101-20260829143005.log")
	content, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Contains(t, string(content), "section")
}

func TestCourseLogsRenameMissingFileIsFine(t *testing.T) {
	logs, err := NewCourseLogs(t.TempDir(), runStart)
	require.NoError(t, err)

	assert.NoError(t, logs.Rename(42))
}
