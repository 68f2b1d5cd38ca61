package validation

import (
	"fmt"
	"time"

	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron specs plus @every/@hourly descriptors.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// validateTriggers checks trigger types and interval syntax. An interval
// value is either a Go duration ("30s", "5m") or a cron expression; at most
// one interval trigger is allowed per workflow.
func validateTriggers(triggers []schema.Trigger) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	intervals := 0
	for i, t := range triggers {
		path := fmt.Sprintf("/triggers[%d]", i)

		switch t.Type {
		case schema.TriggerManual, schema.TriggerAlert:
			if t.Value != "" {
				result.AddWarning(path+".value", schema.ErrCodeTrigger,
					fmt.Sprintf("%s trigger ignores its value", t.Type))
			}
		case schema.TriggerInterval:
			intervals++
			if t.Value == "" {
				result.AddError(path+".value", schema.ErrCodeTrigger,
					"interval trigger requires a duration or cron expression")
				continue
			}
			if _, err := time.ParseDuration(t.Value); err == nil {
				continue
			}
			if _, err := cronParser.Parse(t.Value); err != nil {
				result.AddError(path+".value", schema.ErrCodeTrigger,
					fmt.Sprintf("interval %q is neither a duration nor a cron expression: %s", t.Value, err))
			}
		default:
			result.AddError(path+".type", schema.ErrCodeTrigger,
				fmt.Sprintf("unknown trigger type %q", t.Type))
		}
	}

	if intervals > 1 {
		result.AddError("/triggers", schema.ErrCodeTrigger,
			"at most one interval trigger is allowed")
	}

	return result
}
