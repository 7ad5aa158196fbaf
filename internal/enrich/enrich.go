// Package enrich turns fetched instances into output records.
package enrich

import (
	"github.com/sshcld/sshcld/internal/config"
	"github.com/sshcld/sshcld/internal/plugin"
	"github.com/sshcld/sshcld/internal/template"
	"github.com/sshcld/sshcld/pkg/instance"
)

// Instances builds one record per instance, in order. Connection strings
// are attached only when enabled, and tags are projected onto the
// configured printable tags so that every record has the same tag keys.
func Instances(instances []instance.Instance, cfg *config.Config) []instance.Record {
	vars := cfg.Variables()
	native := plugin.NativeClientFor(cfg.DefaultCloud)

	sshTemplate, sshEnabled := cfg.ConnectionTemplate(config.SSHConnectionKey)
	nativeTemplate, nativeEnabled := cfg.ConnectionTemplate(native.ConfigKey)

	records := make([]instance.Record, 0, len(instances))
	for i := range instances {
		inst := &instances[i]

		r := instance.Record{
			ID:               inst.ID,
			Name:             inst.Name,
			State:            inst.State,
			Region:           inst.Region,
			PrivateIPAddress: inst.PrivateIPAddress,
			PublicIPAddress:  inst.PublicIPAddress,
			Tags:             projectTags(inst.Tags, cfg.PrintableTags),
		}
		if sshEnabled {
			s := template.Replace(sshTemplate, inst, vars)
			r.SSHString = &s
		}
		if nativeEnabled {
			s := template.Replace(nativeTemplate, inst, vars)
			r.NativeClientString = &s
		}

		records = append(records, r)
	}

	return records
}

// projectTags keeps the printable tags, in printable order, filling the
// ones the instance lacks with empty values.
func projectTags(tags map[string]string, printable []string) []instance.Tag {
	projected := make([]instance.Tag, 0, len(printable))
	seen := make(map[string]bool, len(printable))
	for _, key := range printable {
		if seen[key] {
			continue
		}
		seen[key] = true
		projected = append(projected, instance.Tag{Key: key, Value: tags[key]})
	}
	return projected
}
