// Package render formats enriched instance records for output.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sshcld/sshcld/internal/config"
	"github.com/sshcld/sshcld/internal/plugin"
	"github.com/sshcld/sshcld/pkg/instance"
)

// NoResults is printed instead of a table when nothing matched.
const NoResults = "No servers found matching your filter"

// SSHHeader is the header of the SSH connection column.
const SSHHeader = "SSH Connection"

// Table renders records as a text table. The SSH and native connection
// columns are present when the corresponding feature is enabled in cfg;
// a record without the value shows a blank cell.
func Table(cfg *config.Config, records []instance.Record) string {
	if len(records) == 0 {
		return NoResults
	}

	native := plugin.NativeClientFor(cfg.DefaultCloud)
	_, showSSH := cfg.ConnectionTemplate(config.SSHConnectionKey)
	_, showNative := cfg.ConnectionTemplate(native.ConfigKey)
	tagKeys := tagColumns(records)

	header := table.Row{"Instance ID", "Instance Name", "State", "Region", "Private IP", "Public IP"}
	for _, key := range tagKeys {
		header = append(header, key)
	}
	if showSSH {
		header = append(header, SSHHeader)
	}
	if showNative {
		header = append(header, native.Label)
	}

	t := createTable()
	t.AppendHeader(header)
	for _, r := range records {
		row := table.Row{r.ID, r.Name, r.State, r.Region, r.PrivateIPAddress, r.PublicIPAddress}
		for _, key := range tagKeys {
			v, _ := r.TagValue(key)
			row = append(row, v)
		}
		if showSSH {
			row = append(row, deref(r.SSHString))
		}
		if showNative {
			row = append(row, deref(r.NativeClientString))
		}
		t.AppendRow(row)
	}

	return t.Render()
}

// JSON renders records as an indented JSON array of flattened objects.
func JSON(records []instance.Record) (string, error) {
	if records == nil {
		records = []instance.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(data), nil
}

func createTable() table.Writer {
	style := table.StyleDefault
	style.Name = "sshcld"
	style.Format.Header = text.FormatDefault
	style.Options.DrawBorder = false
	style.Options.SeparateColumns = false
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "

	t := table.NewWriter()
	t.SetStyle(style)
	return t
}

// tagColumns returns the projected tag keys, in record order. Enrichment
// gives every record the same keys, so the first record decides.
func tagColumns(records []instance.Record) []string {
	keys := make([]string, 0, len(records[0].Tags))
	for _, tag := range records[0].Tags {
		keys = append(keys, tag.Key)
	}
	return keys
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
