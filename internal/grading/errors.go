package grading

import "errors"

var (
	// ErrNotFound indicates a referenced assignment, participant or questionnaire does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration indicates the assignment is missing data required to grade it.
	ErrConfiguration = errors.New("grading configuration error")
	// ErrForbidden indicates the requester failed the access-control predicate.
	ErrForbidden = errors.New("not authorized to view this report")
	// ErrDependency indicates a collaborator (storage, policy engine, summariser) failed.
	ErrDependency = errors.New("grading dependency failure")
)
