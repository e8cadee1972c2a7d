package version

import (
	"fmt"
	"regexp"
	"sync"
)

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild may be set at link time with
// -ldflags "-X github.com/cellnet/celld/version.appBuild=foo".
// Build metadata containing anything other than alphanumerics and '-' is ignored.
var appBuild string

var validBuild = regexp.MustCompile(`^[0-9A-Za-z-]*$`)

var (
	versionOnce sync.Once
	version     string
)

// Version returns the application version in the form major.minor.patch,
// followed by -build when valid build metadata was linked in.
func Version() string {
	versionOnce.Do(func() {
		version = formatVersion(appBuild)
	})
	return version
}

func formatVersion(build string) string {
	base := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if build == "" || !validBuild.MatchString(build) {
		return base
	}
	return base + "-" + build
}
