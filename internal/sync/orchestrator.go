// Package sync reconciles GIS group membership with LMS course rosters,
// one group per outcome-linked assignment.
package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/geosync-io/geosync/internal/gis"
	"github.com/geosync-io/geosync/internal/identity"
	"github.com/geosync-io/geosync/internal/lms"
	"github.com/geosync-io/geosync/internal/models"
)

// LMS is the roster side of the sync: paginated course, assignment,
// outcome and enrollment lookups.
type LMS interface {
	GetOutcome(ctx context.Context, outcomeID int) (*models.Outcome, error)
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
	ListCourseAssignments(ctx context.Context, courseID int) ([]models.Assignment, error)
	ListCourseUsers(ctx context.Context, courseID int, enrollmentType string) ([]models.Enrollment, error)
	ListOutcomeGroupLinks(ctx context.Context, courseID int) ([]models.OutcomeGroupLink, error)
	GetCoursePage(ctx context.Context, courseID int, pageName string) (*models.Page, error)
}

// GIS is the group side of the sync.
type GIS interface {
	SearchGroupByTitle(ctx context.Context, title string) (*models.Group, error)
	CreateGroup(ctx context.Context, title string, tags []string) (*models.Group, error)
	GroupMembers(ctx context.Context, group *models.Group) ([]string, error)
	ModifyUsers(ctx context.Context, group *models.Group, gisNames []string, mode gis.Mode) (*gis.MutationReport, error)
}

// Mailer delivers one course's instructor log.
type Mailer interface {
	SendCourseLog(courseID int, instructorLoginIDs []string, body string) error
}

// Options carries the run-level settings the orchestrator needs.
type Options struct {
	// OutcomeID flags the assignments to sync; the run fails if the
	// outcome does not exist.
	OutcomeID int

	// BaseURL anchors the course-link pattern on the config page.
	BaseURL string

	// ConfigCourseID / ConfigCoursePage locate the hand-maintained course
	// id list; FallbackCourseIDs applies when that page is unusable.
	ConfigCourseID    int
	ConfigCoursePage  string
	FallbackCourseIDs []int

	// GroupTags are applied to every group this run creates.
	GroupTags []string

	// SendEmail mails each course's log to its instructors after the run.
	SendEmail bool
}

// Orchestrator drives one sync run. Everything is sequential: one remote
// call at a time, one assignment after another.
type Orchestrator struct {
	lms        LMS
	gis        GIS
	normalizer identity.Normalizer
	logs       *CourseLogs
	mailer     Mailer
	opts       Options

	runStart time.Time
}

func NewOrchestrator(lmsClient LMS, gisClient GIS, normalizer identity.Normalizer,
	logs *CourseLogs, mailer Mailer, opts Options) *Orchestrator {
	return &Orchestrator{
		lms:        lmsClient,
		gis:        gisClient,
		normalizer: normalizer,
		logs:       logs,
		mailer:     mailer,
		opts:       opts,
		runStart:   logs.runStart,
	}
}

// Run executes one full sync. Fatal conditions (missing outcome, zero
// outcome-linked courses, collection fetch failures) abort the run;
// per-assignment problems are logged and skipped.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.New()
	logger := logrus.WithField("run_id", runID)
	logger.Info("Starting roster sync run")

	outcome, err := o.lms.GetOutcome(ctx, o.opts.OutcomeID)
	if err != nil {
		return fmt.Errorf("looking up outcome %d: %w", o.opts.OutcomeID, err)
	}
	if outcome == nil {
		return fmt.Errorf("outcome ID %d was not found", o.opts.OutcomeID)
	}
	logger.WithFields(logrus.Fields{
		"outcome_id":    outcome.ID,
		"outcome_title": outcome.Title,
	}).Info("Found target outcome")

	courseIDs := o.candidateCourseIDs(ctx)
	logger.WithField("course_ids", courseIDs).Info("Candidate courses to check for outcome")

	matchingCourseIDs, err := o.coursesWithOutcome(ctx, courseIDs, outcome)
	if err != nil {
		return err
	}
	if len(matchingCourseIDs) == 0 {
		return fmt.Errorf("no courses linked to outcome %q were found", outcome.Title)
	}
	logger.WithField("course_ids", matchingCourseIDs).Info("Courses linked to outcome")

	assignments, err := o.matchingAssignments(ctx, matchingCourseIDs, outcome)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		// Not fatal: a quiet period with no active outcome-linked
		// assignments is a normal state.
		logger.WithField("outcome_id", outcome.ID).Info("No active assignments linked to outcome; nothing to sync")
		return nil
	}
	logger.WithField("assignments", len(assignments)).Info("Assignments linked to outcome")

	courses, rosters, instructors, err := o.fetchCourseData(ctx, matchingCourseIDs)
	if err != nil {
		return err
	}

	for _, assignment := range assignments {
		course, ok := courses[assignment.CourseID]
		if !ok {
			logger.WithFields(logrus.Fields{
				"assignment_id": assignment.ID,
				"course_id":     assignment.CourseID,
			}).Warn("Assignment references a course that was not fetched; skipping")
			continue
		}
		o.syncAssignment(ctx, assignment, course, rosters[assignment.CourseID])
	}

	if err := o.logs.Close(); err != nil {
		logger.WithError(err).Warn("Failed closing course logs")
	}

	if o.opts.SendEmail {
		o.emailCourseLogs(instructors)
	}
	o.logs.RenameAll()

	logger.Info("Finished roster sync run")
	return nil
}

// candidateCourseIDs reads the hand-maintained course id list from the
// LMS config page, falling back to the static configured set when the
// page is missing or yields no course links.
func (o *Orchestrator) candidateCourseIDs(ctx context.Context) []int {
	page, err := o.lms.GetCoursePage(ctx, o.opts.ConfigCourseID, o.opts.ConfigCoursePage)
	if err != nil {
		logrus.WithError(err).Warn("Failed to fetch config course page; using configured course IDs")
		return o.opts.FallbackCourseIDs
	}
	if page == nil {
		logrus.WithFields(logrus.Fields{
			"course_id": o.opts.ConfigCourseID,
			"page":      o.opts.ConfigCoursePage,
		}).Warn("Config course page not found; using configured course IDs")
		return o.opts.FallbackCourseIDs
	}

	courseIDs, err := lms.ParseCourseIDs(page.Body, o.opts.BaseURL)
	if err != nil {
		logrus.WithError(err).Warn("Failed to parse config course page; using configured course IDs")
		return o.opts.FallbackCourseIDs
	}
	if len(courseIDs) == 0 {
		logrus.WithFields(logrus.Fields{
			"course_id": o.opts.ConfigCourseID,
			"page":      o.opts.ConfigCoursePage,
		}).Warn("No course links found in config course page; using configured course IDs")
		return o.opts.FallbackCourseIDs
	}

	return courseIDs
}

// coursesWithOutcome filters the candidates to courses whose outcome
// links reference the target outcome.
func (o *Orchestrator) coursesWithOutcome(ctx context.Context, courseIDs []int, outcome *models.Outcome) ([]int, error) {
	var matching []int
	for _, courseID := range courseIDs {
		links, err := o.lms.ListOutcomeGroupLinks(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("fetching outcome links for course %d: %w", courseID, err)
		}
		for _, link := range links {
			if link.Outcome != nil && link.Outcome.ID == outcome.ID {
				matching = append(matching, courseID)
				break
			}
		}
	}
	sort.Ints(matching)
	return matching, nil
}

// matchingAssignments collects the assignments whose rubric references
// the outcome and whose expiration has not passed. An absent expiration
// means the assignment never expires.
func (o *Orchestrator) matchingAssignments(ctx context.Context, courseIDs []int, outcome *models.Outcome) ([]models.Assignment, error) {
	var matching []models.Assignment
	for _, courseID := range courseIDs {
		assignments, err := o.lms.ListCourseAssignments(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("fetching assignments for course %d: %w", courseID, err)
		}

		for _, assignment := range assignments {
			if !assignment.LinksOutcome(outcome.ID) {
				continue
			}
			if expires := assignment.ExpiresAt(); expires != nil && expires.Before(o.runStart) {
				logrus.WithFields(logrus.Fields{
					"assignment": assignment.Name,
					"course_id":  courseID,
					"expired_at": expires,
				}).Info("Skipping expired assignment")
				continue
			}
			matching = append(matching, assignment)
		}
	}
	return matching, nil
}

// fetchCourseData pulls the course records, full rosters and instructor
// rosters for the surviving course set.
func (o *Orchestrator) fetchCourseData(ctx context.Context, courseIDs []int) (
	map[int]models.Course, map[int][]models.Enrollment, map[int][]models.Enrollment, error) {

	courses := make(map[int]models.Course, len(courseIDs))
	rosters := make(map[int][]models.Enrollment, len(courseIDs))
	instructors := make(map[int][]models.Enrollment, len(courseIDs))

	for _, courseID := range courseIDs {
		course, err := o.lms.GetCourse(ctx, courseID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fetching course %d: %w", courseID, err)
		}
		courses[courseID] = *course

		roster, err := o.lms.ListCourseUsers(ctx, courseID, "")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fetching roster for course %d: %w", courseID, err)
		}
		rosters[courseID] = roster

		teachers, err := o.lms.ListCourseUsers(ctx, courseID, "teacher")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fetching instructors for course %d: %w", courseID, err)
		}
		instructors[courseID] = teachers
	}

	return courses, rosters, instructors, nil
}

// syncAssignment reconciles one assignment's group. Failures are logged
// and recorded in the instructor report; they never abort the run.
func (o *Orchestrator) syncAssignment(ctx context.Context, assignment models.Assignment,
	course models.Course, roster []models.Enrollment) {

	title := models.GroupTitle(course, assignment)
	report := &Report{}

	group := o.resolveGroup(ctx, title, report)
	if group == nil {
		logrus.WithField("title", title).Warn("No group available for assignment; skipping")
		report.GroupProblem(title)
	} else {
		o.syncGroupMembers(ctx, group, roster, report)
	}
	report.Separator()

	if err := o.logs.Append(course.ID, report.String()); err != nil {
		logrus.WithError(err).WithField("course_id", course.ID).Error("Failed writing course log")
	}
}

// resolveGroup finds the group with the deterministic title, creating it
// when absent. Search happens before create, so re-discovery across runs
// is idempotent. Returns nil when neither search nor create produced a
// group.
func (o *Orchestrator) resolveGroup(ctx context.Context, title string, report *Report) *models.Group {
	logrus.WithField("title", title).Info("Searching for existing GIS group")

	group, err := o.gis.SearchGroupByTitle(ctx, title)
	if err != nil {
		logrus.WithError(err).WithField("title", title).Error("Group search failed")
		return nil
	}
	if group != nil {
		return group
	}

	report.CreatingGroup(title)
	group, err = o.gis.CreateGroup(ctx, title, o.opts.GroupTags)
	if err != nil {
		logrus.WithError(err).WithField("title", title).Error("Group creation failed")
		return nil
	}
	return group
}

// syncGroupMembers runs the member reconciliation for one group:
// fetch both sides, compute the delta, apply removals then additions.
func (o *Orchestrator) syncGroupMembers(ctx context.Context, group *models.Group,
	roster []models.Enrollment, report *Report) {

	gisNames, err := o.gis.GroupMembers(ctx, group)
	if err != nil {
		logrus.WithError(err).WithField("group", group.NameAndID()).Error("Failed fetching group members")
		report.GroupProblem(group.Title)
		return
	}
	currentLoginIDs := o.normalizer.ToLMSLoginIDs(gisNames)

	desiredLoginIDs := make([]string, 0, len(roster))
	for _, enrollment := range roster {
		if enrollment.LoginID != nil {
			desiredLoginIDs = append(desiredLoginIDs, *enrollment.LoginID)
		}
	}

	delta := ComputeDelta(currentLoginIDs, desiredLoginIDs)
	logrus.WithFields(logrus.Fields{
		"group":     group.NameAndID(),
		"to_remove": len(delta.ToRemove),
		"to_add":    len(delta.ToAdd),
		"unchanged": len(delta.Unchanged),
	}).Info("Computed membership delta")

	report.GroupHeader(group)

	// Removals before additions, so a username never has both pending at
	// once.
	if err := o.applyChange(ctx, group, delta.ToRemove, gis.ModeRemove, report); err != nil {
		return
	}
	o.applyChange(ctx, group, delta.ToAdd, gis.ModeAdd, report)
}

// applyChange converts login ids to GIS usernames and applies one side of
// the delta. A failure aborts only this mutation.
func (o *Orchestrator) applyChange(ctx context.Context, group *models.Group,
	loginIDs []string, mode gis.Mode, report *Report) error {

	if len(loginIDs) == 0 {
		logrus.WithFields(logrus.Fields{
			"group": group.NameAndID(),
			"mode":  mode.String(),
		}).Info("No users to change")
		report.NoChanges(mode)
		return nil
	}

	result, err := o.gis.ModifyUsers(ctx, group, o.normalizer.ToGISNames(loginIDs), mode)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"group": group.NameAndID(),
			"mode":  mode.String(),
		}).Error("Membership change failed")
		report.ChangeProblem(mode, group)
		return err
	}

	report.MutationResult(mode, result)
	return nil
}

// emailCourseLogs mails each course's accumulated log to its instructors,
// then rotates the file so it is not re-sent.
func (o *Orchestrator) emailCourseLogs(instructors map[int][]models.Enrollment) {
	logrus.Info("Preparing to send email to instructors")

	for _, courseID := range o.logs.CourseIDs() {
		content, err := o.logs.Read(courseID)
		if err != nil {
			logrus.WithError(err).WithField("course_id", courseID).Warn("Failed reading course log for email")
			continue
		}
		if len(content) == 0 {
			logrus.WithField("course_id", courseID).Debug("No log content for course; not emailing")
			continue
		}

		var loginIDs []string
		for _, instructor := range instructors[courseID] {
			if instructor.LoginID != nil {
				loginIDs = append(loginIDs, *instructor.LoginID)
			}
		}
		if len(loginIDs) == 0 {
			logrus.WithField("course_id", courseID).Warn("Course has no instructors with login ids; not emailing")
			continue
		}

		if err := o.mailer.SendCourseLog(courseID, loginIDs, content); err != nil {
			logrus.WithError(err).WithField("course_id", courseID).Error("Failed to email course log")
			continue
		}

		if err := o.logs.Rename(courseID); err != nil {
			logrus.WithError(err).Warn("Failed to rename emailed course log")
		}
	}
}
