package api

// Stamped with -ldflags "-X github.com/MJE43/life-tick-go/internal/api.EngineVersion=...".
var (
	EngineVersion = "dev"
	GitCommit     = "unknown"
	BuildTime     = "unknown"
)

// GetVersionInfo reports the stamped build metadata.
func GetVersionInfo() VersionInfo {
	return VersionInfo{EngineVersion, GitCommit, BuildTime}
}
