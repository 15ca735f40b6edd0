package enums

import "fmt"

// ConversionSource identifies which CRM record a new project was created
// from. Each source may be converted into a project exactly once.
type ConversionSource string

const (
	ConversionSourceLead        ConversionSource = "lead"
	ConversionSourceOpportunity ConversionSource = "opportunity"
	ConversionSourceDeal        ConversionSource = "deal"
)

var validConversionSources = []ConversionSource{
	ConversionSourceLead,
	ConversionSourceOpportunity,
	ConversionSourceDeal,
}

// IsValid reports whether the value matches a known conversion source.
func (c ConversionSource) IsValid() bool {
	for _, candidate := range validConversionSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConversionSource converts raw input into ConversionSource.
func ParseConversionSource(value string) (ConversionSource, error) {
	for _, candidate := range validConversionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid conversion source %q", value)
}
