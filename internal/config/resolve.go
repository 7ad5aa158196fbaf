package config

import "github.com/sshcld/sshcld/internal/filter"

// Flags holds command line overrides. Zero values mean "not given".
type Flags struct {
	Region  string
	Profile string
	Cloud   string
	SSH     bool
	SSM     bool

	// At most one of Filter, Name and ID is set.
	Filter string
	Name   string
	ID     string
}

// FilterString returns the filter string the flags select, expanding the
// name and ID shorthands.
func (f Flags) FilterString() string {
	switch {
	case f.Filter != "":
		return f.Filter
	case f.Name != "":
		return filter.ByName(f.Name)
	case f.ID != "":
		return filter.ByID(f.ID)
	}
	return ""
}

// Resolve picks the first non-zero value of flag, file and fallback.
func Resolve[T comparable](flag, file, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	if file != zero {
		return file
	}
	return fallback
}

// Apply resolves every setting of c against the command line flags. It
// fails when no cloud provider is selected by either.
func (c *Config) Apply(f Flags) error {
	c.DefaultCloud = Resolve(f.Cloud, c.DefaultCloud, "")
	if c.DefaultCloud == "" {
		return &ConfigurationError{Message: "you should specify cloud provider name (aws, azure)"}
	}

	c.CloudRegion = Resolve(f.Region, c.CloudRegion, "")
	c.CloudProfile = Resolve(f.Profile, c.CloudProfile, "")
	c.SSHConnectionStringEnabled = Resolve(f.SSH, c.SSHConnectionStringEnabled, false)
	c.AWSSSMConnectionStringEnabled = Resolve(f.SSM, c.AWSSSMConnectionStringEnabled, false)
	c.Filters = Resolve(f.FilterString(), c.Filters, "")

	return nil
}
