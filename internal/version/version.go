package version

var (
	AppName        = "Server Ghost"
	AppDescription = "Autonomous Discord companion that hangs out like a regular user"
	AppVersion     = "0.1.0"

	// Set via ldflags at build time.
	BuildDate = "unknown"
	GoVersion = "unknown"
)
