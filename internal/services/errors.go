package services

import "errors"

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrBlobNotFound      = errors.New("blob not found")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrWrongFunctionKind = errors.New("function kind mismatch")
	ErrInvalidArgs       = errors.New("invalid arguments")
)

// Table names used for change notifications.
const (
	TableGroups   = "groups"
	TableMessages = "messages"
	TableBlobs    = "blobs"
)
