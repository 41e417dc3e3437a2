package domain

import "errors"

var (
	// ErrValidationInput is returned for malformed validate requests.
	ErrValidationInput = errors.New("invalid validation input")
	// ErrNoQuestionToday indicates nothing is scheduled for the current date.
	ErrNoQuestionToday = errors.New("no question available for today")
	// ErrProviderUnavailable indicates the question set could not be fetched.
	ErrProviderUnavailable = errors.New("question provider unavailable")
	// ErrJudgeUnavailable indicates the remote judge failed to answer.
	ErrJudgeUnavailable = errors.New("judge unavailable")
	// ErrJudgeUnconfigured indicates no usable judge credentials are set.
	ErrJudgeUnconfigured = errors.New("judge not configured")
	// ErrMalformedVerdict indicates the judge replied with something other than yes/no.
	ErrMalformedVerdict = errors.New("malformed judge verdict")
	// ErrPersistence wraps failures writing the player record.
	ErrPersistence = errors.New("player record persistence failed")
	// ErrRecordNotFound is returned by stores when no record exists for a player.
	ErrRecordNotFound = errors.New("player record not found")
	// ErrInvalidCommit indicates mismatched per-question slices.
	ErrInvalidCommit = errors.New("invalid day commit")
	// ErrDayAlreadyCommitted guards against charging a day twice.
	ErrDayAlreadyCommitted = errors.New("day already committed")

	// ErrWrongPhase is returned when an action does not fit the current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrInvalidWager indicates a wager outside the allowed bounds.
	ErrInvalidWager = errors.New("wager out of range")
	// ErrEmptyAnswer indicates a blank submission.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrSlotResolved indicates the question slot already has a result.
	ErrSlotResolved = errors.New("question already resolved")
	// ErrCheckInProgress indicates an answer is already being judged.
	ErrCheckInProgress = errors.New("answer check in progress")
	// ErrControllerClosed is returned by a day controller after Close.
	ErrControllerClosed = errors.New("day controller closed")
)
