package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInvalidCandidate indicates a geocoder result is missing required fields
	ErrInvalidCandidate = errors.New("invalid location candidate")

	// ErrDuplicateLocation indicates a location near the candidate is already saved
	ErrDuplicateLocation = errors.New("location already saved")

	// ErrLocationNotFound indicates the location is not tracked
	ErrLocationNotFound = errors.New("location not found")

	// ErrIndexOutOfRange indicates a reorder index outside the location list
	ErrIndexOutOfRange = errors.New("location index out of range")

	// ErrFetchEmpty indicates the weather source completed without data
	ErrFetchEmpty = errors.New("no weather data received")

	// ErrFetchFailed indicates a network or decoding failure while fetching
	ErrFetchFailed = errors.New("weather fetch failed")

	// ErrPersistence indicates the durable store could not be read or written
	ErrPersistence = errors.New("persistence failure")

	// ErrServiceUnavailable indicates the weather service is unreachable
	ErrServiceUnavailable = errors.New("weather service is unreachable")

	// ErrUnauthorized indicates the API key was rejected
	ErrUnauthorized = errors.New("weather service rejected the api key")
)
