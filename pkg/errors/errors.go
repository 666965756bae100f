// Package errors provides custom error types for the rollcall system.
// These errors enable programmatic error checking and separate structural
// input failures (which abort a reconciliation pass) from record-level ones.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join, Is and As re-export the standard library helpers so callers only
// import this package.
var (
	Join = errors.Join
	Is   = errors.Is
	As   = errors.As
)

// Sentinel errors for the rollcall system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidName indicates an empty personal name was passed to identifier derivation
	ErrInvalidName = errors.New("invalid name")

	// ErrDuplicateAsset indicates one image reference is claimed twice in the raw asset index
	ErrDuplicateAsset = errors.New("duplicate asset")

	// ErrMissingIDOverride indicates a manual profile injection without an identifier
	ErrMissingIDOverride = errors.New("missing id override")

	// ErrImageNotFound indicates a referenced image is absent from the physical inventory
	ErrImageNotFound = errors.New("image not found")

	// ErrUpstreamUnavailable indicates an upstream table could not be retrieved
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// InvalidNameError is returned when identifier derivation receives an empty name.
// It is fatal to the single record only.
type InvalidNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface
func (e *InvalidNameError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid name %q", e.Name)
}

// Is implements errors.Is support
func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName || target == ErrInvalidInput
}

// NewInvalidNameError creates a new InvalidNameError
func NewInvalidNameError(name, reason string) *InvalidNameError {
	return &InvalidNameError{Name: name, Reason: reason}
}

// DuplicateAssetError is returned when an image reference (or its stem) is
// claimed by two different display-name keys or inventory paths before any
// matching runs. It is fatal to the whole pass.
type DuplicateAssetError struct {
	Ref  string
	Keys []string
}

// Error implements the error interface
func (e *DuplicateAssetError) Error() string {
	return fmt.Sprintf("image %s is claimed by multiple keys: %s", e.Ref, strings.Join(e.Keys, ", "))
}

// Is implements errors.Is support
func (e *DuplicateAssetError) Is(target error) bool {
	return target == ErrDuplicateAsset
}

// NewDuplicateAssetError creates a new DuplicateAssetError
func NewDuplicateAssetError(ref string, keys ...string) *DuplicateAssetError {
	return &DuplicateAssetError{Ref: ref, Keys: keys}
}

// MissingIDOverrideError is returned when a manual profile injection names an
// entity no upstream profile mentions and carries no explicit identifier.
type MissingIDOverrideError struct {
	Name string
}

// Error implements the error interface
func (e *MissingIDOverrideError) Error() string {
	return fmt.Sprintf("profile injection %q has no upstream profile and no id", e.Name)
}

// Is implements errors.Is support
func (e *MissingIDOverrideError) Is(target error) bool {
	return target == ErrMissingIDOverride
}

// NewMissingIDOverrideError creates a new MissingIDOverrideError
func NewMissingIDOverrideError(name string) *MissingIDOverrideError {
	return &MissingIDOverrideError{Name: name}
}

// ImageNotFoundError is returned when a referenced image does not exist in
// the physical inventory. Dangling references are never dropped silently.
type ImageNotFoundError struct {
	Ref    string
	Source string // where the reference came from: "label", "override", ...
}

// Error implements the error interface
func (e *ImageNotFoundError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("image %s referenced by %s not found in inventory", e.Ref, e.Source)
	}
	return fmt.Sprintf("image %s not found in inventory", e.Ref)
}

// Is implements errors.Is support
func (e *ImageNotFoundError) Is(target error) bool {
	return target == ErrImageNotFound || target == ErrNotFound
}

// NewImageNotFoundError creates a new ImageNotFoundError
func NewImageNotFoundError(ref, source string) *ImageNotFoundError {
	return &ImageNotFoundError{Ref: ref, Source: source}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from an upstream table endpoint
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "walk", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "build", "save", "fetch"
	Resource  string // "catalog", "overrides", "index", "table"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidName checks if an error is an invalid name error
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsDuplicateAsset checks if an error is a duplicate asset error
func IsDuplicateAsset(err error) bool {
	return errors.Is(err, ErrDuplicateAsset)
}

// IsMissingIDOverride checks if an error is a missing id override error
func IsMissingIDOverride(err error) bool {
	return errors.Is(err, ErrMissingIDOverride)
}

// IsImageNotFound checks if an error is an image not found error
func IsImageNotFound(err error) bool {
	return errors.Is(err, ErrImageNotFound)
}

// IsStructural reports whether err indicates inconsistent inputs that must
// abort a whole reconciliation pass.
func IsStructural(err error) bool {
	return IsDuplicateAsset(err) || IsImageNotFound(err) || IsMissingIDOverride(err)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
