package main

import (
	"runtime/debug"
	"time"
)

var commit = "dev"
var buildDate = ""

// versionString is what the startup log and the User-Agent-style banner show.
func versionString() string {
	if buildDate == "" {
		return commit
	}
	return commit + " (" + buildDate + ")"
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value != "" {
				commit = s.Value
				if len(commit) > 7 {
					commit = commit[:7]
				}
			}
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				buildDate = t.Format("2006-01-02")
			}
		}
	}
}
