package domain

import "errors"

var (
	// ErrTransport marks a network or non-2xx failure from a backend call.
	ErrTransport = errors.New("backend transport failure")
	// ErrShape marks a response that arrived but cannot be used.
	ErrShape = errors.New("unusable backend response shape")

	ErrAllTiersFailed = errors.New("all dashboard data sources failed")
	ErrSyncFailed     = errors.New("external sync failed")
	ErrForbidden      = errors.New("role is not allowed to perform this action")
	ErrInvalidScope   = errors.New("invalid dashboard scope")
)
