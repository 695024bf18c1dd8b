package handlers

const (
	FlashCookieName = "flash"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrNotFound            = "Not found"
	ErrTooManyRequests     = "Too many requests, please slow down"
	ErrInternalServerError = "Internal server error"

	flashSaveFailed  = "We could not save your list. Please try again."
	flashListMissing = "That list no longer exists. Please try again."
	flashNoStage     = "You are not editing a list right now."
	flashSaved       = "List saved."
	flashDeleted     = "List deleted."
	flashDiscarded   = "Changes discarded."
)
