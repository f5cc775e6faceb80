package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	stamped := Info{Version: "v1.0.0", Commit: "abc", Date: "2024-01-01"}
	unstamped := Info{Version: "dev", Commit: "none", Date: "unknown"}
	vcs := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-05-06T07:08:09Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name string
		in   Info
		bi   *debug.BuildInfo
		want Info
	}{
		{"no build info", unstamped, nil, unstamped},
		{"ldflags win", stamped, vcs, Info{Version: "v1.0.0", Commit: "abc", Date: "2024-01-01", Dirty: true}},
		{"fallback", unstamped, vcs, Info{Version: "v0.3.1", Commit: "0123456789abcdef", Date: "2024-05-06T07:08:09Z", Dirty: true}},
		{"devel module", unstamped, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, unstamped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromBuildInfo(tt.in, tt.bi); got != tt.want {
				t.Errorf("fromBuildInfo = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "v1", Commit: "0123456789abcdef", Date: "today", Dirty: true}.String()
	if !strings.Contains(s, "commit: 0123456789ab-dirty") || !strings.Contains(s, "version: v1") {
		t.Errorf("String() = %q", s)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version: ") {
		t.Errorf("Template() = %q", Template())
	}
}
