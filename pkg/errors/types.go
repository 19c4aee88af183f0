// Copyright 2025 YUNIKKAI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for expected, non-fatal outcomes.
var (
	// ErrManifestMissing is returned when the dependency manifest does not
	// exist. Callers treat this as a warning: the environment is still
	// considered provisioned, the install step is skipped.
	ErrManifestMissing = errors.New("dependency manifest not found")

	// ErrProcessNotFound is returned when no process matches the service's
	// executable identity. This is the normal "already stopped" outcome,
	// not a failure.
	ErrProcessNotFound = errors.New("no matching process found")
)

// MissingArtifactError represents a missing entry artifact at start time.
// Use this when the application entrypoint required to launch the service
// does not exist.
type MissingArtifactError struct {
	// Path is the artifact path that was checked
	Path string
}

// Error implements the error interface.
func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("entry artifact not found: %s", e.Path)
}

// MissingEnvironmentError represents an absent runtime environment where
// one is required. The stop flow uses it as a sanity check marker.
type MissingEnvironmentError struct {
	// Root is the environment root directory that was checked
	Root string
}

// Error implements the error interface.
func (e *MissingEnvironmentError) Error() string {
	return fmt.Sprintf("runtime environment not found at %s", e.Root)
}

// ProvisionError represents a failure while creating or refreshing the
// runtime environment. Filesystem and install failures both surface here.
type ProvisionError struct {
	// Step identifies which provisioning step failed (e.g., "create", "install")
	Step string

	// ExitCode is the exit status of the failed command, if one ran
	ExitCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	msg := fmt.Sprintf("provisioning failed at %s", e.Step)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit %d)", msg, e.ExitCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

// GuestUnavailableError represents a failure to invoke the bridging
// mechanism at all. The guest execution context is assumed always
// available, so this is fatal.
type GuestUnavailableError struct {
	// Bridge is the host-side command used to reach the guest
	Bridge string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *GuestUnavailableError) Error() string {
	return fmt.Sprintf("guest context unavailable via %s: %v", e.Bridge, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *GuestUnavailableError) Unwrap() error {
	return e.Cause
}

// LaunchError represents a failure to issue the service launch command.
// The start contract promises only that the launch command was issued
// without I/O error; this error means even that failed.
type LaunchError struct {
	// Command is the command that failed to launch
	Command string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Command, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents operation timeouts.
// Provisioning and bridge calls run under a bounded deadline; exceeding it
// surfaces as a distinct error kind rather than a generic failure.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "bridge", "provision")
	Operation string

	// Duration is how long the operation ran before timing out
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s operation timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "server.port")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
