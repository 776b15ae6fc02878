package moderation

import (
	"errors"
	"strings"
)

// ErrSettingsUnavailable is returned when the settings store could not answer
// a lookup. The message was left untouched.
var ErrSettingsUnavailable = errors.New("moderation: settings unavailable")

// ErrNoSource is returned when a message needing enforcement has no source
// adapter to enforce through.
var ErrNoSource = errors.New("moderation: message has no source adapter")

// EnforcementError reports which enforcement actions failed. The actions are
// independent: a failed notice does not mean the original was kept, and the
// other way round.
type EnforcementError struct {
	NotifyErr error
	DeleteErr error
}

func (e *EnforcementError) Error() string {
	var parts []string
	if e.NotifyErr != nil {
		parts = append(parts, "notify: "+e.NotifyErr.Error())
	}
	if e.DeleteErr != nil {
		parts = append(parts, "delete: "+e.DeleteErr.Error())
	}
	return "moderation: enforcement failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the individual action errors.
func (e *EnforcementError) Unwrap() []error {
	var errs []error
	if e.NotifyErr != nil {
		errs = append(errs, e.NotifyErr)
	}
	if e.DeleteErr != nil {
		errs = append(errs, e.DeleteErr)
	}
	return errs
}
