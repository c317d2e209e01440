package service

import "errors"

var (
	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrSessionClosed indicates no session is open for submissions.
	ErrSessionClosed = errors.New("no open session")
	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEvaluation indicates the evaluator failed or returned unusable output.
	ErrEvaluation = errors.New("evaluation failed")
	// ErrPersistence indicates a submission could not be stored.
	ErrPersistence = errors.New("persistence failed")
	// ErrSubmissionNotFound indicates the referenced submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAlreadyRated indicates the submission already carries a rating.
	ErrAlreadyRated = errors.New("submission already rated")
	// ErrEvaluatorUnavailable indicates no evaluator is configured.
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
	// ErrDatabaseUnavailable indicates the relational store could not be reached.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)
