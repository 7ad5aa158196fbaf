package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sshcld/sshcld/pkg/instance"
)

func newTestInstance() *instance.Instance {
	return &instance.Instance{
		ID:               "i-123456",
		Name:             "nginx",
		State:            "running",
		Region:           "us-east-1",
		PrivateIPAddress: "10.0.0.1",
		PublicIPAddress:  "1.2.3.4",
		Tags:             map[string]string{"environment": "production", "department": "marketing"},
	}
}

func TestReplace_EmptyInputs(t *testing.T) {
	assert.Equal(t, "", Replace("", newTestInstance(), nil))
	assert.Equal(t, "", Replace("ssh %private_ip_address%", nil, nil))
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{
			name: "no matches",
			tmpl: "ssh username@localhost",
			want: "ssh username@localhost",
		},
		{
			name: "unknown token",
			tmpl: "ssh %user%@%host%",
			want: "ssh %user%@%host%",
		},
		{
			name: "one match",
			tmpl: "ssh username@%private_ip_address%",
			want: "ssh username@10.0.0.1",
		},
		{
			name: "all instance fields",
			tmpl: "id=%instance_id%, name=%instance_name%, private_ip=%private_ip_address%, public_ip=%public_ip_address%",
			want: "id=i-123456, name=nginx, private_ip=10.0.0.1, public_ip=1.2.3.4",
		},
		{
			name: "config variables",
			tmpl: "region=%cloud_region%, profile=%cloud_profile%",
			vars: map[string]string{"cloud_region": "us-east-1", "cloud_profile": "prod"},
			want: "region=us-east-1, profile=prod",
		},
		{
			name: "empty config variables",
			tmpl: "region=%cloud_region%, profile=%cloud_profile%",
			vars: map[string]string{"cloud_region": "", "cloud_profile": ""},
			want: "region=, profile=",
		},
		{
			name: "tags",
			tmpl: "env=%tag_environment%, app=%tag_application%, team=%tag_department%",
			want: "env=production, app=%tag_application%, team=marketing",
		},
		{
			name: "repeated token",
			tmpl: "%instance_id% %instance_id%",
			want: "i-123456 i-123456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Replace(tt.tmpl, newTestInstance(), tt.vars))
		})
	}
}

func TestReplace_NoPublicIP(t *testing.T) {
	inst := newTestInstance()
	inst.PublicIPAddress = ""

	assert.Equal(t, "ssh username@", Replace("ssh username@%public_ip_address%", inst, nil))
}

func TestReplace_NoTags(t *testing.T) {
	inst := newTestInstance()
	inst.Tags = nil

	assert.Equal(t, "ssh username@%tag_department%", Replace("ssh username@%tag_department%", inst, nil))
}

func TestReplace_ValuesNotExpandedAgain(t *testing.T) {
	inst := newTestInstance()
	inst.Name = "%instance_id%"

	assert.Equal(t, "%instance_id% i-123456", Replace("%instance_name% %instance_id%", inst, nil))
}
