package internal

import (
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"
)

// Build describes the version control state the binary was built from.
type Build struct {
	Revision      string
	RevisionTime  time.Time
	LocalModified bool
}

// BuildInfo is read from the binary when the program starts.
var BuildInfo = readBuild(debug.ReadBuildInfo())

func readBuild(info *debug.BuildInfo, ok bool) Build {
	b := Build{
		Revision: "unknown",
	}

	if !ok || info == nil {
		return b
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if setting.Value != "" {
				b.Revision = setting.Value
			}
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, setting.Value)
			if err == nil {
				b.RevisionTime = t
			}
		case "vcs.modified":
			b.LocalModified, _ = strconv.ParseBool(setting.Value)
		}
	}

	return b
}

// ShortRevision returns the first 12 characters of the revision.
func (b Build) ShortRevision() string {
	if len(b.Revision) > 12 {
		return b.Revision[:12]
	}
	return b.Revision
}

func (b Build) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("revision", b.Revision),
		slog.Time("revisionTime", b.RevisionTime),
		slog.Bool("localModified", b.LocalModified),
	)
}
