package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if err := setupViperConfig(v, configFile); err != nil {
		return nil, err
	}

	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		// .env file not found, that's okay - continue with other sources
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}
	return nil
}

// setupViperConfig configures viper with file paths and defaults
func setupViperConfig(v *viper.Viper, configFile string) error {
	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/geosync")
	v.AddConfigPath("~/.config/geosync")

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	if err := setupHomeConfigPath(v); err != nil {
		return err
	}

	// Set default values
	setDefaults(v)

	// Set environment variable settings
	v.SetEnvPrefix("GEOSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	return nil
}

// setupHomeConfigPath adds the home directory config path if available
func setupHomeConfigPath(v *viper.Viper) error {
	home := os.Getenv("HOME")
	if len(home) == 0 {
		return nil
	}

	usr, err := user.Current()
	if err != nil {
		logrus.Fatalf("Failed to get current user: %v", err)
	}

	configPath := filepath.Join(usr.HomeDir, ".config", "geosync")
	v.AddConfigPath(configPath)

	return nil
}

// bindEnvironmentVariables binds all environment variables to viper
func bindEnvironmentVariables(v *viper.Viper) {

	// LMS environment variables
	v.BindEnv("lms.base_url", "GEOSYNC_LMS_BASE_URL")
	v.BindEnv("lms.token", "GEOSYNC_LMS_TOKEN")
	v.BindEnv("lms.outcome_id", "GEOSYNC_LMS_OUTCOME_ID")
	v.BindEnv("lms.config_course_id", "GEOSYNC_LMS_CONFIG_COURSE_ID")
	v.BindEnv("lms.config_course_page", "GEOSYNC_LMS_CONFIG_COURSE_PAGE")

	// GIS environment variables
	v.BindEnv("gis.org_name", "GEOSYNC_GIS_ORG_NAME")
	v.BindEnv("gis.url", "GEOSYNC_GIS_URL")
	v.BindEnv("gis.username", "GEOSYNC_GIS_USERNAME")
	v.BindEnv("gis.password", "GEOSYNC_GIS_PASSWORD")

	bindEmailEnvVars(v)
	bindLoggingEnvVars(v)
}

// bindEmailEnvVars binds SMTP configuration environment variables
func bindEmailEnvVars(v *viper.Viper) {
	v.BindEnv("email.host", "GEOSYNC_EMAIL_HOST")
	v.BindEnv("email.port", "GEOSYNC_EMAIL_PORT")
	v.BindEnv("email.user", "GEOSYNC_EMAIL_USER")
	v.BindEnv("email.pass", "GEOSYNC_EMAIL_PASS")
	v.BindEnv("email.from", "GEOSYNC_EMAIL_FROM")
	v.BindEnv("email.recipient_domain", "GEOSYNC_EMAIL_RECIPIENT_DOMAIN")
}

// bindLoggingEnvVars binds logging configuration environment variables
func bindLoggingEnvVars(v *viper.Viper) {
	v.BindEnv("logging.level", "GEOSYNC_LOGGING_LEVEL")
	v.BindEnv("logging.format", "GEOSYNC_LOGGING_FORMAT")
	v.BindEnv("logging.directory", "GEOSYNC_LOGGING_DIRECTORY")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("lms.config_course_page", "course-ids")

	v.SetDefault("gis.group_tags", []string{"geosync"})

	v.SetDefault("email.host", "localhost")
	v.SetDefault("email.port", 25)
	v.SetDefault("email.subject", "GIS roster sync log for course ID %d")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.directory", "/var/log/geosync")
}

// readAndUnmarshalConfig reads the config file and unmarshals into the
// Config struct
func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setupLogging configures the logging system based on the config
func setupLogging(config *Config, v *viper.Viper) error {
	// Set logging level
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)

	// Set logging format
	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Dump out the config settings if in debug mode
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			logrus.Debugf("Config '%s': %v\n", key, value)
		}
	}

	return nil
}
