package models

import (
	"fmt"
	"time"
)

// Outcome is the rubric criterion that flags an assignment as needing a
// GIS group. Looked up once per run.
type Outcome struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Course is an LMS course. Many assignments belong to one course.
type Course struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RubricCriterion is one grading criterion of an assignment, optionally
// linked to an outcome.
type RubricCriterion struct {
	OutcomeID int `json:"outcome_id"`
}

// Assignment is an LMS assignment. DueAt and LockAt are nil when the LMS
// record omits them.
type Assignment struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	CourseID int               `json:"course_id"`
	DueAt    *time.Time        `json:"due_at"`
	LockAt   *time.Time        `json:"lock_at"`
	Rubric   []RubricCriterion `json:"rubric"`
}

// ExpiresAt returns the assignment's expiration timestamp, preferring
// LockAt over DueAt. Nil means the assignment never expires.
func (a Assignment) ExpiresAt() *time.Time {
	if a.LockAt != nil {
		return a.LockAt
	}
	return a.DueAt
}

// LinksOutcome reports whether any rubric criterion references the outcome.
func (a Assignment) LinksOutcome(outcomeID int) bool {
	for _, criterion := range a.Rubric {
		if criterion.OutcomeID == outcomeID {
			return true
		}
	}
	return false
}

// OutcomeGroupLink ties a course to an outcome.
type OutcomeGroupLink struct {
	Outcome *Outcome `json:"outcome"`
}

// Enrollment is one user record from a course roster. LoginID is nil for
// accounts without a login identity; those are excluded from rosters.
type Enrollment struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	LoginID *string `json:"login_id"`
	Email   string  `json:"email"`
}

// Page is a named LMS content page. Body is raw HTML.
type Page struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Group is a GIS collaboration group. Title is the natural key, derived
// from the course and assignment, so re-discovery across runs is stable.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NameAndID renders a group the way instructor-facing logs refer to it.
func (g Group) NameAndID() string {
	return fmt.Sprintf("%q (%s)", g.Title, g.ID)
}

// GroupTitle builds the deterministic group title for a course/assignment
// pair.
func GroupTitle(course Course, assignment Assignment) string {
	return fmt.Sprintf("%s_%d_%s_%d", course.Name, course.ID, assignment.Name, assignment.ID)
}
