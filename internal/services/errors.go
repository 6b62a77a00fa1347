package services

import (
	"errors"

	"github.com/yukikurage/release-planner/internal/progress"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemoteUnavailable means the in-memory change stands but could not
	// be written to the remote store.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	ErrTaskNotFound        = errors.New("task not found")
	ErrKPINotFound         = errors.New("kpi not found")
	ErrLaunchNotFound      = errors.New("launch not found")
	ErrActionNotFound      = errors.New("action not found")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrIdeaNotFound        = errors.New("idea not found")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrPerspectiveNotFound = errors.New("perspective not found")
	ErrPerspectiveExists   = errors.New("perspective already exists")
	ErrSubtaskNotFound     = progress.ErrSubtaskNotFound
)
