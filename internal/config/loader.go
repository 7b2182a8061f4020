package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
//  1. Default values
//  2. The YAML file at path (optional, skipped when path is empty or missing)
//  3. BOT_* environment variables, plus TOKEN for the bot token
//
// Every failure is wrapped with ErrConfiguration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BindEnv with explicit names does not apply the prefix.
	if err := v.BindEnv("telegram.token", "BOT_TELEGRAM_TOKEN", "TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: failed to bind token variable: %v", ErrConfiguration, err)
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks the struct tags of the whole configuration tree.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// readConfigFile reads path into v. A missing file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.poll_timeout", DefaultPollTimeout)
	v.SetDefault("telegram.set_my_commands", true)
	v.SetDefault("telegram.drop_pending", false)

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("notify.fire_immediately", false)
	v.SetDefault("notify.delivery_timeout", DefaultDeliveryTimeout)

	v.SetDefault("scheduler.delivery_retention", DefaultDeliveryRetention)
	v.SetDefault("scheduler.tasks", DefaultTasks)

	v.SetDefault("messages.welcome", DefaultWelcomeMessage)
	v.SetDefault("messages.timer_set", DefaultTimerSetMessage)
	v.SetDefault("messages.timer_error", DefaultTimerErrorMessage)
	v.SetDefault("messages.notification", DefaultNotificationMessage)
	v.SetDefault("messages.cmd_start", DefaultCmdStartDescription)
	v.SetDefault("messages.cmd_set_timer", DefaultCmdSetTimerDescription)
}
