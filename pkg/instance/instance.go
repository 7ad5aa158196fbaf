// Package instance defines the compute instance model shared by sshcld providers.
package instance

import "encoding/json"

// Unknown is the placeholder used when a provider record cannot be read.
const Unknown = "unknown"

// Instance is one cloud compute resource as returned by a provider.
// Lives for a single invocation, nothing is persisted.
type Instance struct {
	ID               string            `json:"instance_id"`
	Name             string            `json:"instance_name"`
	State            string            `json:"instance_state"`
	Region           string            `json:"region"`
	PrivateIPAddress string            `json:"private_ip_address"`
	PublicIPAddress  string            `json:"public_ip_address"`
	Tags             map[string]string `json:"tags"`
}

// Placeholder returns the degraded record used when normalization of a
// provider record fails. ID and region are always set.
func Placeholder(region, name string) Instance {
	if region == "" {
		region = Unknown
	}
	return Instance{
		ID:               Unknown,
		Name:             name,
		State:            Unknown,
		Region:           region,
		PrivateIPAddress: Unknown,
		PublicIPAddress:  Unknown,
		Tags:             map[string]string{},
	}
}

// Tag is a projected key/value pair on an enriched record.
type Tag struct {
	Key   string
	Value string
}

// Record is an enriched instance ready for output. Connection strings are
// nil when the feature is disabled and non-nil (possibly empty) otherwise.
// It encodes to JSON as the flat object returned by Fields.
type Record struct {
	ID                 string
	Name               string
	State              string
	Region             string
	PrivateIPAddress   string
	PublicIPAddress    string
	Tags               []Tag
	SSHString          *string
	NativeClientString *string
}

// TagValue returns the projected value for key and whether it is present.
func (r Record) TagValue(key string) (string, bool) {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Fields flattens the record into a single map, with projected tags
// hoisted to top-level keys. Disabled connection strings are absent.
func (r Record) Fields() map[string]string {
	fields := map[string]string{
		"instance_id":        r.ID,
		"instance_name":      r.Name,
		"instance_state":     r.State,
		"region":             r.Region,
		"private_ip_address": r.PrivateIPAddress,
		"public_ip_address":  r.PublicIPAddress,
	}
	for _, t := range r.Tags {
		fields[t.Key] = t.Value
	}
	if r.SSHString != nil {
		fields["ssh_string"] = *r.SSHString
	}
	if r.NativeClientString != nil {
		fields["native_client_string"] = *r.NativeClientString
	}
	return fields
}

// MarshalJSON encodes the record as its flattened fields.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}
