package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	DbHealthy  bool   `json:"db_healthy"`
}
