package domain

import (
	"leadpipeline_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidators adds the enum tags used by request DTOs:
// division, role, lead_status, priority, comm_type and probability.
func RegisterValidators(val *validator.Validator) error {
	rules := map[string]playground.Func{
		"division":    validator.OneOf(stringsOf(Divisions)...),
		"role":        validator.OneOf(stringsOf(Roles)...),
		"lead_status": validator.OneOf(stringsOf(Statuses)...),
		"priority":    validator.OneOf(string(PriorityHigh), string(PriorityMedium), string(PriorityLow)),
		"comm_type":   validator.OneOf(stringsOf(CommunicationTypes)...),
		"probability": func(fl playground.FieldLevel) bool {
			return ValidProbability(int(fl.Field().Int()))
		},
	}
	for tag, fn := range rules {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
