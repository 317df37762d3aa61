package version

const APP = "vidtrack"

// set by -ldflags at build time
var (
	VERSION = "dev"
	COMMIT  = "none"
)
