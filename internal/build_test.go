package internal

import (
	"log/slog"
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func Test_readBuild(t *testing.T) {
	tests := map[string]struct {
		info *debug.BuildInfo
		ok   bool
		want Build
	}{
		"ok, no build info": {
			info: nil,
			ok:   false,
			want: Build{Revision: "unknown"},
		},
		"ok, no vcs settings": {
			info: &debug.BuildInfo{},
			ok:   true,
			want: Build{Revision: "unknown"},
		},
		"ok, all vcs settings": {
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "3f1c2a9e8b7d6c5b4a39281706f5e4d3c2b1a098"},
					{Key: "vcs.time", Value: "2024-03-01T10:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			ok: true,
			want: Build{
				Revision:      "3f1c2a9e8b7d6c5b4a39281706f5e4d3c2b1a098",
				RevisionTime:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				LocalModified: true,
			},
		},
		"ok, invalid values are ignored": {
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: ""},
					{Key: "vcs.time", Value: "yesterday"},
					{Key: "vcs.modified", Value: "maybe"},
				},
			},
			ok:   true,
			want: Build{Revision: "unknown"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := readBuild(tc.info, tc.ok)
			if got.Revision != tc.want.Revision ||
				!got.RevisionTime.Equal(tc.want.RevisionTime) ||
				got.LocalModified != tc.want.LocalModified {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func Test_Build(t *testing.T) {
	b := Build{Revision: "3f1c2a9e8b7d6c5b4a39281706f5e4d3c2b1a098"}

	if got := b.ShortRevision(); got != "3f1c2a9e8b7d" {
		t.Errorf("got %q, want %q", got, "3f1c2a9e8b7d")
	}

	if got := (Build{Revision: "unknown"}).ShortRevision(); got != "unknown" {
		t.Errorf("got %q, want %q", got, "unknown")
	}

	buf := &strings.Builder{}
	slog.New(slog.NewTextHandler(buf, nil)).Info("starting", "build", b)

	if !strings.Contains(buf.String(), "build.revision=3f1c2a9e8b7d6c5b4a39281706f5e4d3c2b1a098") {
		t.Errorf("expected build revision in log output, got %s", buf.String())
	}
}
