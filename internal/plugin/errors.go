package plugin

import "fmt"

// APIError is returned when a provider call fails: missing or invalid
// credentials, unknown profile or region, connectivity problems and
// client errors reported by the provider.
type APIError struct {
	Provider string
	Region   string
	Message  string
	Err      error
}

// NewAPIError wraps err for the given provider and region.
func NewAPIError(provider, region string, err error) *APIError {
	return &APIError{Provider: provider, Region: region, Message: err.Error(), Err: err}
}

func (e *APIError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s api error (%s): %s", e.Provider, e.Region, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
