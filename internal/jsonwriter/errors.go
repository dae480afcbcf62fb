package jsonwriter

import "errors"

var (
	ErrBufferFull    = errors.New("jsonwriter: buffer full")
	ErrNoContainer   = errors.New("jsonwriter: no open container")
	ErrKindMismatch  = errors.New("jsonwriter: closing container of a different kind")
	ErrUnexpectedKey = errors.New("jsonwriter: key is only allowed inside an object")
	ErrContainerOpen = errors.New("jsonwriter: container still open")
	ErrUnbalanced    = errors.New("jsonwriter: document has unclosed containers")
	ErrEmptyDocument = errors.New("jsonwriter: document has no root container")
	ErrRootClosed    = errors.New("jsonwriter: root container already closed")
	ErrFinished      = errors.New("jsonwriter: document already finished")
)
