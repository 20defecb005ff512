package version

// Set by -ldflags at build time; defaults are for dev builds.
var (
	AppName    = "Pursebot"
	AppVersion = "dev"
	BuildDate  = "unknown"
)
