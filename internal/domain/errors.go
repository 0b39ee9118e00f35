package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrShowNotFound indicates the show is not tracked locally
	ErrShowNotFound = errors.New("show not found")

	// ErrRemoteUnavailable indicates the metadata provider is unreachable
	ErrRemoteUnavailable = errors.New("metadata provider is unreachable")

	// ErrRemoteNotFound indicates the provider has no such resource
	ErrRemoteNotFound = errors.New("resource not found at metadata provider")

	// ErrAuthFailed indicates the provider rejected our credentials
	ErrAuthFailed = errors.New("metadata provider rejected credentials")
)
