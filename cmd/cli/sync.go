package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geosync-io/geosync/internal/common"
	"github.com/geosync-io/geosync/internal/config"
	"github.com/geosync-io/geosync/internal/gis"
	"github.com/geosync-io/geosync/internal/identity"
	"github.com/geosync-io/geosync/internal/lms"
	"github.com/geosync-io/geosync/internal/mailer"
	"github.com/geosync-io/geosync/internal/sync"
)

var (
	sendMail  bool
	printMail bool
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Run one roster sync against the GIS platform",
	PreRunE: preRunConfigE,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cfg, sendMail, printMail)
	},
}

// executeRun builds the collaborator clients and drives one sync run.
func executeRun(cfg *config.Config, sendMail, printMail bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	started := time.Now().UTC()
	defer func() {
		logrus.WithField("duration", time.Since(started).Round(time.Millisecond)).
			Info("Sync run finished")
	}()

	logrus.WithFields(logrus.Fields{
		"lms":       cfg.LMS.BaseURL,
		"gis":       cfg.GIS.PortalURL(),
		"lms_token": common.ElideString(cfg.LMS.Token),
	}).Info("Connecting to collaborators")

	lmsClient := lms.NewClient(cfg.LMS.APIBaseURL(), cfg.LMS.Token)
	gisClient := gis.NewClient(cfg.GIS.PortalURL(), cfg.GIS.Username, cfg.GIS.Password)

	logs, err := sync.NewCourseLogs(cfg.Logging.Directory, started)
	if err != nil {
		return fmt.Errorf("setting up course logs: %w", err)
	}

	orchestrator := sync.NewOrchestrator(
		lmsClient,
		gisClient,
		identity.NewNormalizer(cfg.GIS.OrgName),
		logs,
		mailer.New(cfg.Email, printMail),
		sync.Options{
			OutcomeID:         cfg.LMS.OutcomeID,
			BaseURL:           cfg.LMS.BaseURL,
			ConfigCourseID:    cfg.LMS.ConfigCourseID,
			ConfigCoursePage:  cfg.LMS.ConfigCoursePage,
			FallbackCourseIDs: cfg.LMS.CourseIDs,
			GroupTags:         cfg.GIS.GroupTags,
			SendEmail:         sendMail || printMail,
		},
	)

	return orchestrator.Run(context.Background())
}

func init() {
	syncCmd.Flags().BoolVar(&sendMail, "mail", false,
		"Email each course log to its instructors after the run, then rotate the logs")
	syncCmd.Flags().BoolVar(&printMail, "print-mail", false,
		"Print instructor emails to the log instead of sending them")

	rootCmd.AddCommand(syncCmd)
}
