// Package template fills %token% placeholders in connection string templates.
package template

import (
	"strings"

	"github.com/sshcld/sshcld/pkg/instance"
)

// TagPrefix prefixes tag tokens: %tag_environment% is the value of the
// "environment" tag.
const TagPrefix = "tag_"

// Replace substitutes instance fields, instance tags and configuration
// variables in tmpl. Tag tokens for tags the instance does not carry are
// left as they are. The template is scanned once, so substituted values
// are never expanded again.
func Replace(tmpl string, inst *instance.Instance, vars map[string]string) string {
	if tmpl == "" || inst == nil {
		return ""
	}

	pairs := []string{
		token("instance_id"), inst.ID,
		token("instance_name"), inst.Name,
		token("private_ip_address"), inst.PrivateIPAddress,
		token("public_ip_address"), inst.PublicIPAddress,
	}
	for k, v := range inst.Tags {
		pairs = append(pairs, token(TagPrefix+k), v)
	}
	for k, v := range vars {
		pairs = append(pairs, token(k), v)
	}

	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func token(name string) string {
	return "%" + name + "%"
}
