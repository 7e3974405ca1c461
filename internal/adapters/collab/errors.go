package collab

import "errors"

var (
	// ErrCollaborator wraps every failed collaborator call.
	ErrCollaborator = errors.New("collaborator request failed")
	// ErrStatus is a non-2xx response.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode is a response body that is not the expected JSON.
	ErrDecode = errors.New("decode response")
)
