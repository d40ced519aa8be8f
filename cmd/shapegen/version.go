package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// buildInfo is replaced in tests.
var buildInfo = debug.ReadBuildInfo

// Version reports the module version when installed with go install, and
// "devel-<VERSION>[+<revision>[-dirty]]" for builds from a checkout.
func Version() string {
	base := strings.TrimSpace(embeddedVersion)
	info, ok := buildInfo()
	if !ok {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	switch {
	case rev == "":
		return "devel-" + base
	case dirty:
		return "devel-" + base + "+" + rev + "-dirty"
	}
	return "devel-" + base + "+" + rev
}
