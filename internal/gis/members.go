package gis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/geosync-io/geosync/internal/common"
	"github.com/geosync-io/geosync/internal/models"
)

// BatchSize is the per-call username limit of the bulk membership
// endpoints.
const BatchSize = 20

// MutationReport is the outcome of one bulk membership change. NotApplied
// lists the usernames the backend declined; typically accounts that do
// not exist yet.
type MutationReport struct {
	Submitted  int
	NotApplied []string
}

// Applied is the number of usernames the backend accepted.
func (r *MutationReport) Applied() int {
	return r.Submitted - len(r.NotApplied)
}

// ModifyUsers adds or removes the given GIS usernames in fixed-size
// batches. An empty username list makes no API call. A batch-level error
// aborts the whole operation: remaining batches are never attempted and
// no partial report is returned.
func (c *Client) ModifyUsers(ctx context.Context, group *models.Group, gisNames []string, mode Mode) (*MutationReport, error) {
	report := &MutationReport{Submitted: len(gisNames)}
	if len(gisNames) == 0 {
		return report, nil
	}

	logrus.WithFields(logrus.Fields{
		"group": group.NameAndID(),
		"mode":  mode.String(),
		"count": len(gisNames),
	}).Info("Applying group membership change")

	path := fmt.Sprintf("community/groups/%s/%s", group.ID, mode.endpoint())

	for _, batch := range common.SplitBatches(gisNames, BatchSize) {
		var body map[string]json.RawMessage
		form := map[string]string{"users": strings.Join(batch, ",")}

		if err := c.do(ctx, "POST", path, form, &body); err != nil {
			logrus.WithFields(logrus.Fields{
				"group": group.NameAndID(),
				"mode":  mode.String(),
			}).WithError(err).Error("Batch membership change failed; aborting operation")
			return nil, fmt.Errorf("%s users %s group %s: %w",
				mode.Gerund(), mode.Preposition(), group.NameAndID(), err)
		}

		var notApplied []string
		if raw, ok := body[mode.notAppliedKey()]; ok {
			if err := json.Unmarshal(raw, &notApplied); err != nil {
				return nil, fmt.Errorf("decoding %s list for group %s: %w",
					mode.notAppliedKey(), group.NameAndID(), err)
			}
		}
		report.NotApplied = append(report.NotApplied, notApplied...)
	}

	logrus.WithFields(logrus.Fields{
		"group":       group.NameAndID(),
		"mode":        mode.String(),
		"applied":     report.Applied(),
		"not_applied": len(report.NotApplied),
	}).Debug("Membership change applied")

	return report, nil
}
