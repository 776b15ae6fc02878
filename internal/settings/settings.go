// Package settings provides per-organization bot settings scoped by
// (platform, organization). Values are plain strings; boolean settings use
// the On/Off values.
package settings

import "context"

// Setting names.
const (
	KeyCensoring = "censoring"
	KeyBadWords  = "badwords"
)

// Boolean setting values.
const (
	On  = "on"
	Off = "off"
)

// Store looks up a setting for an organization on a platform. Implementations
// return defaultValue when the setting is not configured and an error only
// when the backend could not answer.
type Store interface {
	Get(ctx context.Context, platform, orgID, key, defaultValue string) (string, error)
}

// Enabled reports whether a boolean setting is switched on. Unset settings are
// off.
func Enabled(ctx context.Context, store Store, platform, orgID, key string) (bool, error) {
	v, err := store.Get(ctx, platform, orgID, key, Off)
	if err != nil {
		return false, err
	}
	return v == On, nil
}
