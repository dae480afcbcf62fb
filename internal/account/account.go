// Package account resolves SID strings to account information.
//
// The Windows implementation calls the local security authority and the
// network user database. Other platforms get a resolver backed by a table
// of well-known SIDs, which keeps the tool usable for syntax checks and
// builtin principals.
package account

import (
	"errors"
	"fmt"
	"syscall"
)

// SIDType classifies the principal a SID denotes (SID_NAME_USE).
type SIDType uint32

const (
	SidTypeUser SIDType = iota + 1
	SidTypeGroup
	SidTypeDomain
	SidTypeAlias
	SidTypeWellKnownGroup
	SidTypeDeletedAccount
	SidTypeInvalid
	SidTypeUnknown
	SidTypeComputer
	SidTypeLabel
	SidTypeLogonSession
)

var sidTypeNames = map[SIDType]string{
	SidTypeUser:           "user",
	SidTypeGroup:          "group",
	SidTypeDomain:         "domain",
	SidTypeAlias:          "alias",
	SidTypeWellKnownGroup: "well-known group",
	SidTypeDeletedAccount: "deleted account",
	SidTypeInvalid:        "invalid",
	SidTypeUnknown:        "unknown",
	SidTypeComputer:       "computer",
	SidTypeLabel:          "label",
	SidTypeLogonSession:   "logon session",
}

func (t SIDType) String() string {
	if name, ok := sidTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SIDType(%d)", uint32(t))
}

// HasUserInfo reports whether the network user database holds an
// extended record for principals of this type.
func (t SIDType) HasUserInfo() bool {
	return t == SidTypeUser || t == SidTypeDeletedAccount
}

// Account is the result of a successful SID lookup.
type Account struct {
	SID    string
	Domain string
	Name   string
	Type   SIDType
}

// LogonHoursSize is the size of the logon hours bitmap: one bit per hour
// of the week.
const LogonHoursSize = 21

// UserInfo is the extended record of a user account.
type UserInfo struct {
	FullName         string
	Comment          string
	UserComment      string
	PasswordAge      uint32
	PasswordExpired  uint32
	BadPasswordCount uint32
	NumLogons        uint32
	Privilege        uint32
	Flags            uint32
	AuthFlags        uint32
	HomeDir          string
	HomeDirDrive     string
	Profile          string
	ScriptPath       string
	Parameters       string
	Workstations     string
	LastLogon        uint32
	LastLogoff       uint32
	AccountExpires   uint32
	MaxStorage       uint32
	UnitsPerWeek     uint32
	LogonHours       [LogonHoursSize]byte
	LogonServer      string
	CountryCode      uint32
	CodePage         uint32
	PrimaryGroupID   uint32
}

// InternetIdentity describes a user account linked to an online identity.
type InternetIdentity struct {
	Enabled   bool
	Provider  string
	Principal string
}

// Resolver looks up accounts and their extended records.
type Resolver interface {
	// LookupSID converts sid and resolves it on system (empty for the
	// local machine).
	LookupSID(system, sid string) (*Account, error)
	// UserInfo returns the extended record of user on server.
	UserInfo(server, user string) (*UserInfo, error)
	// InternetIdentity returns the online identity linked to user.
	InternetIdentity(server, user string) (*InternetIdentity, error)
}

// Operations reported in Error.Op.
const (
	OpConvertSID       = "ConvertStringSidToSid"
	OpLookupAccountSID = "LookupAccountSid"
	OpNetUserGetInfo   = "NetUserGetInfo"
)

// Windows error codes produced by the resolvers in this package.
const (
	ErrorSuccess          uint32 = 0
	ErrorAccessDenied     uint32 = 5
	ErrorNotSupported     uint32 = 50
	ErrorBadNetPath       uint32 = 53
	ErrorInvalidParameter uint32 = 87
	ErrorNoneMapped       uint32 = 1332
	ErrorInvalidSID       uint32 = 1337
	ErrorRPCUnavailable   uint32 = 1722
	NerrUserNotFound      uint32 = 2221
)

// Error is a failed platform call together with its Windows error code.
type Error struct {
	Op   string
	Code uint32
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: error %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err, taking the code from a syscall.Errno when present.
func newError(op string, err error) *Error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &Error{Op: op, Code: uint32(errno), Err: err}
	}
	return &Error{Op: op, Err: err}
}

func errorCode(op string, code uint32) *Error {
	return &Error{Op: op, Code: code}
}

// Code returns the Windows error code carried by err, or 0 when there is
// none.
func Code(err error) uint32 {
	var accountErr *Error
	if errors.As(err, &accountErr) {
		return accountErr.Code
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}

	return 0
}

// Op returns the operation that produced err, or "" when err is not an
// *Error.
func Op(err error) string {
	var accountErr *Error
	if errors.As(err, &accountErr) {
		return accountErr.Op
	}
	return ""
}
