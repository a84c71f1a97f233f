package config

import (
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(configRules, Config{})
	return v
}

// configRules holds the cross-field constraints.
func configRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.IsRancher() && c.Cluster == "" {
		sl.ReportError(c.Cluster, "Cluster", "cluster", "required_with_rancher", "")
	}
	if c.Schedule.Cron != "" {
		if _, err := CronParser.Parse(c.Schedule.Cron); err != nil {
			sl.ReportError(c.Schedule.Cron, "Schedule.Cron", "cron", "cron", err.Error())
		}
	}
}

// CronParser accepts schedules with a leading seconds field, as the runner does.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation error: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid configuration:\n%s", strings.Join(msgs, "\n"))
}
