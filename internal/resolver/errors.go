package resolver

import (
	"fmt"

	"github.com/configproxy/core/internal/models"
	"github.com/pkg/errors"
)

// ErrorKind classifies a resolution failure. Both kinds point at upstream
// data that breaks the configuration -> family -> component chain.
type ErrorKind int

const (
	NoFamilyForConfiguration ErrorKind = iota + 1
	NoComponentInFamily
)

func (k ErrorKind) String() string {
	switch k {
	case NoFamilyForConfiguration:
		return "NO_FAMILY_FOR_CONFIGURATION"
	case NoComponentInFamily:
		return "NO_COMPONENT_IN_FAMILY"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrNoFamilyForConfiguration = errors.New("no family for configuration")
	ErrNoComponentInFamily      = errors.New("no component in family")
)

// ResolutionError carries the kind, a readable message and the offending
// identifier so callers can build a diagnostic payload.
type ResolutionError struct {
	Kind    ErrorKind
	Message string
	// ConfigurationID is set for NoFamilyForConfiguration.
	ConfigurationID string
	// Family is set for NoComponentInFamily.
	Family *models.ConfigTypeNode
}

func (e *ResolutionError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is lets errors.Is match a ResolutionError against the sentinel of its kind.
func (e *ResolutionError) Is(target error) bool {
	switch e.Kind {
	case NoFamilyForConfiguration:
		return target == ErrNoFamilyForConfiguration
	case NoComponentInFamily:
		return target == ErrNoComponentInFamily
	}
	return false
}

func noFamilyError(id, reason string) *ResolutionError {
	msg := "No family found for this configuration identified by id:" + id
	if reason != "" {
		msg += " (" + reason + ")"
	}
	return &ResolutionError{
		Kind:            NoFamilyForConfiguration,
		Message:         msg,
		ConfigurationID: id,
	}
}

func noComponentError(family models.ConfigTypeNode) *ResolutionError {
	return &ResolutionError{
		Kind:    NoComponentInFamily,
		Message: fmt.Sprintf("No component found in this family %s (%s)", family.ID, family.DisplayName),
		Family:  &family,
	}
}

// AsResolutionError unwraps err to a *ResolutionError if it carries one.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
