package model

import "fmt"

// ConstructionError is returned when a value object is built from invalid
// data. Nothing is clamped or partially applied.
type ConstructionError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError is returned when a component is created with options
// it cannot run with.
type ConfigurationError struct {
	Component string
	Field     string
	Value     any
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v: %s", e.Component, e.Field, e.Value, e.Reason)
}
