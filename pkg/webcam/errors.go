package webcam

import "github.com/pkg/errors"

// Error kinds returned by the Webcam operations. Returned errors wrap
// one of these with context, match them using errors.Is.
var (
	// ErrInvalidArgument signals a bad construction parameter such as a
	// shrink policy out of bounds
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCheckRemote signals the header-based freshness check could not
	// obtain the remote metadata
	ErrCheckRemote = errors.New("checking remote failed")
	// ErrFetch signals the remote did not deliver the image
	ErrFetch = errors.New("fetching remote failed")
	// ErrInvalidFileData signals the payload or local file is no usable JPEG
	ErrInvalidFileData = errors.New("invalid file data")
	// ErrWriteLocalFile signals a failure writing or archiving the local file
	ErrWriteLocalFile = errors.New("writing local file failed")
	// ErrReadLocalFile signals the local file could not be read or is empty
	ErrReadLocalFile = errors.New("reading local file failed")
	// ErrFileNotFound signals the local file does not exist
	ErrFileNotFound = errors.New("local file not found")
	// ErrFetchRequired signals an operation was invoked before a
	// required fetch completed
	ErrFetchRequired = errors.New("fetch required before this operation")
	// ErrCannotSend signals there is no client connection to deliver to
	ErrCannotSend = errors.New("cannot send to client")
)
