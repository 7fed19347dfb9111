package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// CourseLogs is the per-course instructor log sink. One file per course
// id under "<dir>/courses", opened lazily on first append and owned by
// the orchestrator, which closes and renames them at run end. No global
// handler registry is involved.
type CourseLogs struct {
	courseDir string
	runStart  time.Time
	files     map[int]*os.File
}

const logExtension = ".log"

// runStampFormat suffixes rotated log names, e.g. "138596-20260829120000.log".
const runStampFormat = "20060102150405"

// headerTimeFormat is the friendly timestamp opening each course log.
const headerTimeFormat = "03:04:05 PM on January 02, 2006"

func NewCourseLogs(dir string, runStart time.Time) (*CourseLogs, error) {
	courseDir := filepath.Join(dir, "courses")
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating course log directory: %w", err)
	}

	return &CourseLogs{
		courseDir: courseDir,
		runStart:  runStart,
		files:     make(map[int]*os.File),
	}, nil
}

// Path is the course's log file location for the current run.
func (l *CourseLogs) Path(courseID int) string {
	return filepath.Join(l.courseDir, fmt.Sprintf("%d%s", courseID, logExtension))
}

// Append writes one assignment section to the course's log, creating the
// file with a friendly header on first use.
func (l *CourseLogs) Append(courseID int, text string) error {
	file, ok := l.files[courseID]
	if !ok {
		opened, err := os.OpenFile(l.Path(courseID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening course log for %d: %w", courseID, err)
		}
		if _, err := fmt.Fprintf(opened, "Running at: %s\n\n", l.runStart.Format(headerTimeFormat)); err != nil {
			opened.Close()
			return fmt.Errorf("writing course log header for %d: %w", courseID, err)
		}
		l.files[courseID] = opened
		file = opened
	}

	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("writing course log for %d: %w", courseID, err)
	}
	return nil
}

// CourseIDs lists the courses that received log output this run.
func (l *CourseLogs) CourseIDs() []int {
	ids := make([]int, 0, len(l.files))
	for id := range l.files {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Read returns the accumulated log content for a course. Returns the
// empty string when the course produced no log this run.
func (l *CourseLogs) Read(courseID int) (string, error) {
	content, err := os.ReadFile(l.Path(courseID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading course log for %d: %w", courseID, err)
	}
	return string(content), nil
}

// Close closes every open course log file.
func (l *CourseLogs) Close() error {
	var firstErr error
	for courseID, file := range l.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing course log for %d: %w", courseID, err)
		}
	}
	return firstErr
}

// Rename moves a course's log aside with the run timestamp suffix so the
// next run starts fresh. Missing files are fine; no changes may have been
// logged for the course.
func (l *CourseLogs) Rename(courseID int) error {
	oldName := l.Path(courseID)
	if _, err := os.Stat(oldName); os.IsNotExist(err) {
		return nil
	}

	newName := filepath.Join(l.courseDir,
		fmt.Sprintf("%d-%s%s", courseID, l.runStart.Format(runStampFormat), logExtension))
	if err := os.Rename(oldName, newName); err != nil {
		return fmt.Errorf("renaming course log for %d: %w", courseID, err)
	}

	logrus.WithFields(logrus.Fields{
		"old": oldName,
		"new": newName,
	}).Info("Renamed course log")

	return nil
}

// RenameAll rotates every course log written this run.
func (l *CourseLogs) RenameAll() {
	for _, courseID := range l.CourseIDs() {
		if err := l.Rename(courseID); err != nil {
			logrus.WithError(err).Warn("Failed to rename course log")
		}
	}
}
