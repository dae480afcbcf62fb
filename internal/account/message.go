package account

import "strings"

// UnknownMessage is reported when no text exists for an error code.
const UnknownMessage = "Unknown Windows error message."

// MessageFunc returns the text of a Windows error code.
type MessageFunc func(code uint32) string

var builtinMessages = map[uint32]string{
	ErrorSuccess:          "The operation completed successfully.",
	ErrorAccessDenied:     "Access is denied.",
	ErrorNotSupported:     "The request is not supported.",
	ErrorBadNetPath:       "The network path was not found.",
	ErrorInvalidParameter: "The parameter is incorrect.",
	ErrorNoneMapped:       "No mapping between account names and security IDs was done.",
	ErrorInvalidSID:       "The security ID structure is invalid.",
	ErrorRPCUnavailable:   "The RPC server is unavailable.",
	NerrUserNotFound:      "The user name could not be found.",
}

// BuiltinMessage looks code up in a small table of the errors this tool
// reports most often.
func BuiltinMessage(code uint32) string {
	if msg, ok := builtinMessages[code]; ok {
		return msg
	}
	return UnknownMessage
}

// Message returns the system text for code, falling back to
// UnknownMessage.
func Message(code uint32) string {
	msg := strings.TrimRight(platformMessage(code), " \r\n")
	if msg == "" {
		return UnknownMessage
	}
	return msg
}
