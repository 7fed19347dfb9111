package config

import (
	"fmt"
	"strings"
)

// Config is the full application configuration, populated by viper from
// config files, environment variables and defaults.
type Config struct {
	LMS     LMSConfig     `mapstructure:"lms"`
	GIS     GISConfig     `mapstructure:"gis"`
	Email   EmailConfig   `mapstructure:"email"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LMSConfig addresses the learning-management system.
type LMSConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`

	// OutcomeID is the rubric outcome that flags assignments for syncing.
	OutcomeID int `mapstructure:"outcome_id"`

	// ConfigCourseID / ConfigCoursePage locate the hand-maintained page
	// listing the course ids to process.
	ConfigCourseID   int    `mapstructure:"config_course_id"`
	ConfigCoursePage string `mapstructure:"config_course_page"`

	// CourseIDs is the fallback id set used when the config page is
	// missing or has no parseable course links.
	CourseIDs []int `mapstructure:"course_ids"`
}

// APIBaseURL returns the REST API root under the LMS base URL.
func (c LMSConfig) APIBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/api/v1"
}

// GISConfig addresses the GIS collaboration platform.
type GISConfig struct {
	OrgName  string `mapstructure:"org_name"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// GroupTags are applied to every group this tool creates.
	GroupTags []string `mapstructure:"group_tags"`
}

// PortalURL returns the explicit portal URL, or the conventional one
// derived from the organization name.
func (c GISConfig) PortalURL() string {
	if len(c.URL) > 0 {
		return strings.TrimRight(c.URL, "/")
	}
	return fmt.Sprintf("https://%s.maps.arcgis.com", c.OrgName)
}

// EmailConfig configures per-course instructor log delivery.
type EmailConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`

	// RecipientDomain is appended to instructor login ids to form
	// addresses, e.g. "@example.edu".
	RecipientDomain string `mapstructure:"recipient_domain"`

	// Subject is a format string taking the course id.
	Subject string `mapstructure:"subject"`
}

// LoggingConfig mirrors the standard logging block.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// Directory holds the main run log; per-course logs go to its
	// "courses" subdirectory.
	Directory string `mapstructure:"directory"`
}

// Validate checks the settings a sync run cannot proceed without.
func (c *Config) Validate() error {
	var missing []string
	if len(c.LMS.BaseURL) == 0 {
		missing = append(missing, "lms.base_url")
	}
	if len(c.LMS.Token) == 0 {
		missing = append(missing, "lms.token")
	}
	if c.LMS.OutcomeID == 0 {
		missing = append(missing, "lms.outcome_id")
	}
	if len(c.GIS.OrgName) == 0 {
		missing = append(missing, "gis.org_name")
	}
	if len(c.GIS.Username) == 0 {
		missing = append(missing, "gis.username")
	}
	if len(c.GIS.Password) == 0 {
		missing = append(missing, "gis.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration field(s): %v", missing)
	}
	return nil
}
