// Package version reports build information stamped by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Tag is set at link time: -ldflags "-X github.com/agalitsyn/todo/version.Tag=v1.0.0".
var Tag string

type Info struct {
	Tag      string
	Revision string
	BuildAt  time.Time
	Dirty    bool
}

var current = read()

func read() Info {
	info := Info{Tag: Tag}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromSettings(info, buildInfo.Settings)
}

func fromSettings(info Info, settings []debug.BuildSetting) Info {
	for _, setting := range settings {
		// https://pkg.go.dev/runtime/debug#BuildSetting
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				info.BuildAt = t
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

func Get() Info {
	info := current
	if Tag != "" {
		info.Tag = Tag
	}
	return info
}

func String() string {
	return Get().String()
}

func (i Info) String() string {
	// go run
	if i.Revision == "" {
		if i.Tag != "" {
			return i.Tag
		}
		return "dev"
	}

	rev := i.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}

	s := rev
	if i.Tag != "" {
		s = i.Tag + " " + rev
	}
	if !i.BuildAt.IsZero() {
		s += fmt.Sprintf(" at %s", i.BuildAt.UTC().Format("2006-01-02 15:04:05"))
	}
	if i.Dirty {
		s += " dirty"
	}
	return s
}
