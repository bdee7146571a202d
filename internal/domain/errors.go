package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSchedule  = errors.New("invalid alarm schedule")
	ErrDuplicateSummary = errors.New("session summary already recorded")
	ErrSyncFailed       = errors.New("device sync failed")
)
