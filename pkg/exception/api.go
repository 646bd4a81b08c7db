package exception

import "errors"

var (
	ErrAPIStatus       = errors.New("api: unexpected http status")
	ErrAPIUnsuccessful = errors.New("api: response not successful")
	ErrAPIEmptyBaseURL = errors.New("api: empty base url")
)
