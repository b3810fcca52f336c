package settings

import "time"

// AppSetting is a plain key-value row. Sweep last-run stamps and per-user
// dashboard filter preferences live here.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetRequest is the payload for writing a setting.
type SetRequest struct {
	Value string `json:"value"`
}
