package progress

import "errors"

// Progress service errors
var (
	// ErrVideoNotFound indicates the requested video does not exist
	ErrVideoNotFound = errors.New("video not found")

	// ErrNotEnrolled indicates the viewer is not enrolled in the video's course
	ErrNotEnrolled = errors.New("not enrolled in course")

	// ErrInvalidSample indicates a progress sample outside 0 <= watched <= total
	ErrInvalidSample = errors.New("invalid progress sample")

	// ErrProgressNotFound indicates the viewer has no progress on the video yet
	ErrProgressNotFound = errors.New("progress not found")
)

// IsVideoNotFound checks if the error is a video not found error
func IsVideoNotFound(err error) bool {
	return errors.Is(err, ErrVideoNotFound)
}

// IsNotEnrolled checks if the error is a not enrolled error
func IsNotEnrolled(err error) bool {
	return errors.Is(err, ErrNotEnrolled)
}

// IsInvalidSample checks if the error is an invalid sample error
func IsInvalidSample(err error) bool {
	return errors.Is(err, ErrInvalidSample)
}

// IsProgressNotFound checks if the error is a progress not found error
func IsProgressNotFound(err error) bool {
	return errors.Is(err, ErrProgressNotFound)
}
