//go:build windows

package account

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// NewResolver returns the resolver for the current platform.
func NewResolver() Resolver {
	return systemResolver{}
}

// systemResolver calls advapi32 and netapi32.
type systemResolver struct{}

// userInfo4 mirrors USER_INFO_4 from lmaccess.h.
type userInfo4 struct {
	Name            *uint16
	Password        *uint16
	PasswordAge     uint32
	Priv            uint32
	HomeDir         *uint16
	Comment         *uint16
	Flags           uint32
	ScriptPath      *uint16
	AuthFlags       uint32
	FullName        *uint16
	UsrComment      *uint16
	Parms           *uint16
	Workstations    *uint16
	LastLogon       uint32
	LastLogoff      uint32
	AcctExpires     uint32
	MaxStorage      uint32
	UnitsPerWeek    uint32
	LogonHours      *byte
	BadPwCount      uint32
	NumLogons       uint32
	LogonServer     *uint16
	CountryCode     uint32
	CodePage        uint32
	UserSid         *windows.SID
	PrimaryGroupID  uint32
	Profile         *uint16
	HomeDirDrive    *uint16
	PasswordExpired uint32
}

// userInfo24 mirrors USER_INFO_24 from lmaccess.h.
type userInfo24 struct {
	InternetIdentity      int32
	Flags                 uint32
	InternetProviderName  *uint16
	InternetPrincipalName *uint16
	UserSid               *windows.SID
}

func (systemResolver) LookupSID(system, sid string) (*Account, error) {
	binary, err := windows.StringToSid(sid)
	if err != nil {
		return nil, newError(OpConvertSID, err)
	}

	name, domain, use, err := binary.LookupAccount(system)
	if err != nil {
		return nil, newError(OpLookupAccountSID, err)
	}

	return &Account{
		SID:    sid,
		Domain: domain,
		Name:   name,
		Type:   SIDType(use),
	}, nil
}

func (systemResolver) UserInfo(server, user string) (*UserInfo, error) {
	buf, err := netUserGetInfo(server, user, 4)
	if err != nil {
		return nil, err
	}
	defer windows.NetApiBufferFree(buf)

	raw := (*userInfo4)(unsafe.Pointer(buf))
	info := &UserInfo{
		FullName:         windows.UTF16PtrToString(raw.FullName),
		Comment:          windows.UTF16PtrToString(raw.Comment),
		UserComment:      windows.UTF16PtrToString(raw.UsrComment),
		PasswordAge:      raw.PasswordAge,
		PasswordExpired:  raw.PasswordExpired,
		BadPasswordCount: raw.BadPwCount,
		NumLogons:        raw.NumLogons,
		Privilege:        raw.Priv,
		Flags:            raw.Flags,
		AuthFlags:        raw.AuthFlags,
		HomeDir:          windows.UTF16PtrToString(raw.HomeDir),
		HomeDirDrive:     windows.UTF16PtrToString(raw.HomeDirDrive),
		Profile:          windows.UTF16PtrToString(raw.Profile),
		ScriptPath:       windows.UTF16PtrToString(raw.ScriptPath),
		Parameters:       windows.UTF16PtrToString(raw.Parms),
		Workstations:     windows.UTF16PtrToString(raw.Workstations),
		LastLogon:        raw.LastLogon,
		LastLogoff:       raw.LastLogoff,
		AccountExpires:   raw.AcctExpires,
		MaxStorage:       raw.MaxStorage,
		UnitsPerWeek:     raw.UnitsPerWeek,
		LogonServer:      windows.UTF16PtrToString(raw.LogonServer),
		CountryCode:      raw.CountryCode,
		CodePage:         raw.CodePage,
		PrimaryGroupID:   raw.PrimaryGroupID,
	}
	if raw.LogonHours != nil {
		copy(info.LogonHours[:], unsafe.Slice(raw.LogonHours, LogonHoursSize))
	}

	return info, nil
}

func (systemResolver) InternetIdentity(server, user string) (*InternetIdentity, error) {
	buf, err := netUserGetInfo(server, user, 24)
	if err != nil {
		return nil, err
	}
	defer windows.NetApiBufferFree(buf)

	raw := (*userInfo24)(unsafe.Pointer(buf))
	identity := &InternetIdentity{Enabled: raw.InternetIdentity != 0}
	if identity.Enabled {
		identity.Provider = windows.UTF16PtrToString(raw.InternetProviderName)
		identity.Principal = windows.UTF16PtrToString(raw.InternetPrincipalName)
	}

	return identity, nil
}

// netUserGetInfo returns a buffer the caller must release with
// NetApiBufferFree.
func netUserGetInfo(server, user string, level uint32) (*byte, error) {
	var serverPtr *uint16
	if server != "" {
		p, err := windows.UTF16PtrFromString(server)
		if err != nil {
			return nil, newError(OpNetUserGetInfo, err)
		}
		serverPtr = p
	}

	userPtr, err := windows.UTF16PtrFromString(user)
	if err != nil {
		return nil, newError(OpNetUserGetInfo, err)
	}

	var buf *byte
	if err := windows.NetUserGetInfo(serverPtr, userPtr, level, &buf); err != nil {
		if buf != nil {
			windows.NetApiBufferFree(buf)
		}
		return nil, newError(OpNetUserGetInfo, err)
	}
	if buf == nil {
		return nil, errorCode(OpNetUserGetInfo, NerrUserNotFound)
	}

	return buf, nil
}
