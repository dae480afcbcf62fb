package account

type wellKnownEntry struct {
	domain string
	name   string
	kind   SIDType
}

// wellKnownSIDs holds the machine-independent principals, named the way
// an English Windows installation reports them.
var wellKnownSIDs = map[string]wellKnownEntry{
	"S-1-0-0":      {"", "NULL SID", SidTypeWellKnownGroup},
	"S-1-1-0":      {"", "Everyone", SidTypeWellKnownGroup},
	"S-1-2-0":      {"", "LOCAL", SidTypeWellKnownGroup},
	"S-1-2-1":      {"", "CONSOLE LOGON", SidTypeWellKnownGroup},
	"S-1-3-0":      {"", "CREATOR OWNER", SidTypeWellKnownGroup},
	"S-1-3-1":      {"", "CREATOR GROUP", SidTypeWellKnownGroup},
	"S-1-3-4":      {"", "OWNER RIGHTS", SidTypeWellKnownGroup},
	"S-1-5-1":      {"NT AUTHORITY", "DIALUP", SidTypeWellKnownGroup},
	"S-1-5-2":      {"NT AUTHORITY", "NETWORK", SidTypeWellKnownGroup},
	"S-1-5-3":      {"NT AUTHORITY", "BATCH", SidTypeWellKnownGroup},
	"S-1-5-4":      {"NT AUTHORITY", "INTERACTIVE", SidTypeWellKnownGroup},
	"S-1-5-6":      {"NT AUTHORITY", "SERVICE", SidTypeWellKnownGroup},
	"S-1-5-7":      {"NT AUTHORITY", "ANONYMOUS LOGON", SidTypeWellKnownGroup},
	"S-1-5-9":      {"NT AUTHORITY", "ENTERPRISE DOMAIN CONTROLLERS", SidTypeWellKnownGroup},
	"S-1-5-10":     {"NT AUTHORITY", "SELF", SidTypeWellKnownGroup},
	"S-1-5-11":     {"NT AUTHORITY", "Authenticated Users", SidTypeWellKnownGroup},
	"S-1-5-12":     {"NT AUTHORITY", "RESTRICTED", SidTypeWellKnownGroup},
	"S-1-5-13":     {"NT AUTHORITY", "TERMINAL SERVER USER", SidTypeWellKnownGroup},
	"S-1-5-14":     {"NT AUTHORITY", "REMOTE INTERACTIVE LOGON", SidTypeWellKnownGroup},
	"S-1-5-15":     {"NT AUTHORITY", "This Organization", SidTypeWellKnownGroup},
	"S-1-5-17":     {"NT AUTHORITY", "IUSR", SidTypeWellKnownGroup},
	"S-1-5-18":     {"NT AUTHORITY", "SYSTEM", SidTypeWellKnownGroup},
	"S-1-5-19":     {"NT AUTHORITY", "LOCAL SERVICE", SidTypeWellKnownGroup},
	"S-1-5-20":     {"NT AUTHORITY", "NETWORK SERVICE", SidTypeWellKnownGroup},
	"S-1-5-32":     {"BUILTIN", "BUILTIN", SidTypeDomain},
	"S-1-5-32-544": {"BUILTIN", "Administrators", SidTypeAlias},
	"S-1-5-32-545": {"BUILTIN", "Users", SidTypeAlias},
	"S-1-5-32-546": {"BUILTIN", "Guests", SidTypeAlias},
	"S-1-5-32-547": {"BUILTIN", "Power Users", SidTypeAlias},
	"S-1-5-32-548": {"BUILTIN", "Account Operators", SidTypeAlias},
	"S-1-5-32-549": {"BUILTIN", "Server Operators", SidTypeAlias},
	"S-1-5-32-550": {"BUILTIN", "Print Operators", SidTypeAlias},
	"S-1-5-32-551": {"BUILTIN", "Backup Operators", SidTypeAlias},
	"S-1-5-32-552": {"BUILTIN", "Replicator", SidTypeAlias},
	"S-1-5-32-554": {"BUILTIN", "Pre-Windows 2000 Compatible Access", SidTypeAlias},
	"S-1-5-32-555": {"BUILTIN", "Remote Desktop Users", SidTypeAlias},
	"S-1-5-32-556": {"BUILTIN", "Network Configuration Operators", SidTypeAlias},
	"S-1-5-32-558": {"BUILTIN", "Performance Monitor Users", SidTypeAlias},
	"S-1-5-32-559": {"BUILTIN", "Performance Log Users", SidTypeAlias},
	"S-1-5-32-562": {"BUILTIN", "Distributed COM Users", SidTypeAlias},
	"S-1-5-32-568": {"BUILTIN", "IIS_IUSRS", SidTypeAlias},
	"S-1-5-32-573": {"BUILTIN", "Event Log Readers", SidTypeAlias},
	"S-1-5-32-578": {"BUILTIN", "Hyper-V Administrators", SidTypeAlias},
	"S-1-5-32-580": {"BUILTIN", "Remote Management Users", SidTypeAlias},
	"S-1-5-80-0":   {"NT SERVICE", "ALL SERVICES", SidTypeWellKnownGroup},
	"S-1-16-4096":  {"Mandatory Label", "Low Mandatory Level", SidTypeLabel},
	"S-1-16-8192":  {"Mandatory Label", "Medium Mandatory Level", SidTypeLabel},
	"S-1-16-12288": {"Mandatory Label", "High Mandatory Level", SidTypeLabel},
	"S-1-16-16384": {"Mandatory Label", "System Mandatory Level", SidTypeLabel},
}

// WellKnownResolver resolves only the machine-independent well-known SIDs.
// It has no access to a user database.
type WellKnownResolver struct{}

func (WellKnownResolver) LookupSID(_ string, sid string) (*Account, error) {
	parsed, err := ParseSID(sid)
	if err != nil {
		return nil, &Error{Op: OpConvertSID, Code: ErrorInvalidSID, Err: err}
	}

	entry, ok := wellKnownSIDs[parsed.String()]
	if !ok {
		return nil, errorCode(OpLookupAccountSID, ErrorNoneMapped)
	}

	return &Account{
		SID:    sid,
		Domain: entry.domain,
		Name:   entry.name,
		Type:   entry.kind,
	}, nil
}

func (WellKnownResolver) UserInfo(_, _ string) (*UserInfo, error) {
	return nil, errorCode(OpNetUserGetInfo, ErrorNotSupported)
}

func (WellKnownResolver) InternetIdentity(_, _ string) (*InternetIdentity, error) {
	return nil, errorCode(OpNetUserGetInfo, ErrorNotSupported)
}
