package sync

import (
	"fmt"
	"strings"

	"github.com/geosync-io/geosync/internal/gis"
	"github.com/geosync-io/geosync/internal/models"
)

// Report accumulates the instructor-facing text for one assignment's
// group sync. It is folded into the course log and discarded.
type Report struct {
	b strings.Builder
}

func (r *Report) GroupHeader(group *models.Group) {
	fmt.Fprintf(&r.b, "Group: %s \n\n", group.NameAndID())
}

func (r *Report) CreatingGroup(title string) {
	fmt.Fprintf(&r.b, "Creating GIS group: %q\n", title)
}

func (r *Report) GroupProblem(title string) {
	fmt.Fprintf(&r.b, "Problem creating or updating GIS group %q\n", title)
}

func (r *Report) NoChanges(mode gis.Mode) {
	fmt.Fprintf(&r.b, "No users were %s.\n\n", mode.Past())
}

func (r *Report) ChangeProblem(mode gis.Mode, group *models.Group) {
	fmt.Fprintf(&r.b, "Problem while %s users %s group %s\n\n",
		mode.Gerund(), mode.Preposition(), group.NameAndID())
}

// MutationResult notes the applied count and, when the backend declined
// some usernames, an actionable list for the instructor.
func (r *Report) MutationResult(mode gis.Mode, result *gis.MutationReport) {
	fmt.Fprintf(&r.b, "Number of users %s %s group: [%d]\n\n",
		mode.Past(), mode.Preposition(), result.Applied())

	if len(result.NotApplied) == 0 {
		return
	}

	message := fmt.Sprintf("Some or all users not %s %s GIS group", mode.Past(), mode.Preposition())
	if mode == gis.ModeAdd {
		message += " (These users likely need GIS accounts set up)"
	}
	fmt.Fprintf(&r.b, "%s:\n", message)
	for _, username := range result.NotApplied {
		fmt.Fprintf(&r.b, "* %s\n", username)
	}
}

// Separator closes one assignment's section.
func (r *Report) Separator() {
	r.b.WriteString("- - -\n")
}

func (r *Report) String() string {
	return r.b.String()
}
