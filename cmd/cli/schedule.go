package cli

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var every time.Duration

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Short:   "Run roster syncs on a fixed interval",
	PreRunE: preRunConfigE,
	RunE: func(cmd *cobra.Command, args []string) error {
		if every <= 0 {
			return fmt.Errorf("--every must be a positive duration")
		}

		logrus.WithField("every", every).Info("Starting scheduled sync")

		scheduler := gocron.NewScheduler(time.UTC)

		// Runs never overlap; a long run delays the next one.
		_, err := scheduler.Every(every).SingletonMode().Do(func() {
			if err := executeRun(cfg, sendMail, printMail); err != nil {
				logrus.WithError(err).Error("Scheduled sync run failed")
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling sync job: %w", err)
		}

		scheduler.StartBlocking()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().DurationVar(&every, "every", time.Hour,
		"Interval between sync runs, e.g. 30m or 2h")
	scheduleCmd.Flags().BoolVar(&sendMail, "mail", false,
		"Email each course log to its instructors after every run")
	scheduleCmd.Flags().BoolVar(&printMail, "print-mail", false,
		"Print instructor emails to the log instead of sending them")

	rootCmd.AddCommand(scheduleCmd)
}
