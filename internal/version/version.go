package version

import (
	goversion "github.com/hashicorp/go-version"
)

// AppVersion is overridden at build time:
//
//	go build -ldflags "-X github.com/nulzo/netstats/internal/version.AppVersion=v1.2.0"
var AppVersion = "v0.0.0"

// String returns AppVersion in canonical semver form, or "dev" when it does not parse.
func String() string {
	return normalize(AppVersion)
}

func normalize(raw string) string {
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return "dev"
	}
	return "v" + v.String()
}

