package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.0.0", "abc123", "2024-01-01"
	tmpl := Template()
	for _, want := range []string{"v1.0.0", "abc123", "2024-01-01", "{{.Name}}"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
	if got := Get(); got != (Info{Version: "v1.0.0", Commit: "abc123", Date: "2024-01-01"}) {
		t.Errorf("Get() = %+v", got)
	}
}
