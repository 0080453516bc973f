package services

import (
	"testing"

	"github.com/pulselog/telemetry-gateway/pkg/model"
)

func param(name string, active bool, versionRange string) *model.ProvisioningParameter {
	return &model.ProvisioningParameter{
		Name:         name,
		Value:        "v",
		Type:         "String",
		Active:       active,
		VersionRange: versionRange,
	}
}

func names(params []*model.ProvisioningParameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterParameters(t *testing.T) {
	all := []*model.ProvisioningParameter{
		param("uploadInterval", true, ""),
		param("compressUploads", true, ">= 2.0.0"),
		param("legacyEndpoint", true, "< 2.0.0"),
		param("retired", false, ""),
		param("broken", true, "not-a-range"),
	}

	tests := []struct {
		name          string
		clientVersion string
		want          []string
	}{
		{"new client", "2.1.0", []string{"uploadInterval", "compressUploads"}},
		{"old client", "1.4.3", []string{"uploadInterval", "legacyEndpoint"}},
		{"boundary version", "2.0.0", []string{"uploadInterval", "compressUploads"}},
		{"unparseable client version", "garbage", []string{"uploadInterval"}},
		{"empty client version", "", []string{"uploadInterval"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterParameters(all, tt.clientVersion))
			if len(got) != len(tt.want) {
				t.Fatalf("FilterParameters(%q) = %v, want %v", tt.clientVersion, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FilterParameters(%q)[%d] = %q, want %q", tt.clientVersion, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterParametersSkipsNil(t *testing.T) {
	got := FilterParameters([]*model.ProvisioningParameter{nil, param("a", true, "")}, "1.0.0")
	if len(got) != 1 || got[0].Name != "a" {
		t.Errorf("FilterParameters with nil element = %v, want [a]", names(got))
	}
}
