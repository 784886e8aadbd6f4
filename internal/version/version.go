// Package version reports the build identity of the chartgen binaries.
package version

import "runtime/debug"

// Version is set at link time:
//
//	go build -ldflags "-X github.com/satindergrewal/simaigen/internal/version.Version=v1.0.0"
var Version string

// Revision is the short VCS revision the binary was built from, with a
// "-dirty" suffix for modified trees. Empty when unknown.
var Revision = revision(debug.ReadBuildInfo)

func revision(read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// String returns Version, or Revision, or "devel".
func String() string {
	switch {
	case Version != "":
		return Version
	case Revision != "":
		return Revision
	}
	return "devel"
}
