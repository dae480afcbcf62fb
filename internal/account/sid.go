package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	sidRevision            = 1
	maxSubAuthorities      = 15
	maxIdentifierAuthority = 1<<48 - 1
)

var ErrMalformedSID = errors.New("malformed SID string")

// SID is the parsed form of a SID string.
type SID struct {
	Revision       uint8
	Authority      uint64
	SubAuthorities []uint32
}

// sddlAliases are the machine-independent two-letter SID strings accepted
// by ConvertStringSidToSid.
var sddlAliases = map[string]string{
	"AN": "S-1-5-7",
	"AO": "S-1-5-32-548",
	"AU": "S-1-5-11",
	"BA": "S-1-5-32-544",
	"BG": "S-1-5-32-546",
	"BO": "S-1-5-32-551",
	"BU": "S-1-5-32-545",
	"CG": "S-1-3-1",
	"CO": "S-1-3-0",
	"ED": "S-1-5-9",
	"HI": "S-1-16-12288",
	"IU": "S-1-5-4",
	"LS": "S-1-5-19",
	"LW": "S-1-16-4096",
	"ME": "S-1-16-8192",
	"NO": "S-1-5-32-556",
	"NS": "S-1-5-20",
	"NU": "S-1-5-2",
	"OW": "S-1-3-4",
	"PO": "S-1-5-32-550",
	"PS": "S-1-5-10",
	"PU": "S-1-5-32-547",
	"RC": "S-1-5-12",
	"RD": "S-1-5-32-555",
	"RE": "S-1-5-32-552",
	"RU": "S-1-5-32-554",
	"SI": "S-1-16-16384",
	"SO": "S-1-5-32-549",
	"SU": "S-1-5-6",
	"SY": "S-1-5-18",
	"WD": "S-1-1-0",
}

// ParseSID parses the S-R-I-S-S... form of a SID, or a two-letter SDDL
// alias. Numbers may be decimal or 0x-prefixed hexadecimal.
func ParseSID(s string) (*SID, error) {
	if alias, ok := sddlAliases[strings.ToUpper(s)]; ok {
		s = alias
	}

	parts := strings.Split(s, "-")
	if len(parts) < 3 || !strings.EqualFold(parts[0], "S") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedSID, s)
	}

	revision, err := parseSIDNumber(parts[1], 0xff)
	if err != nil || revision != sidRevision {
		return nil, fmt.Errorf("%w: unsupported revision in %q", ErrMalformedSID, s)
	}

	authority, err := parseSIDNumber(parts[2], maxIdentifierAuthority)
	if err != nil {
		return nil, fmt.Errorf("%w: bad identifier authority in %q", ErrMalformedSID, s)
	}

	subs := parts[3:]
	if len(subs) > maxSubAuthorities {
		return nil, fmt.Errorf("%w: too many sub-authorities in %q", ErrMalformedSID, s)
	}

	sid := &SID{
		Revision:       uint8(revision),
		Authority:      authority,
		SubAuthorities: make([]uint32, 0, len(subs)),
	}
	for _, part := range subs {
		sub, err := parseSIDNumber(part, 0xffffffff)
		if err != nil {
			return nil, fmt.Errorf("%w: bad sub-authority %q in %q", ErrMalformedSID, part, s)
		}
		sid.SubAuthorities = append(sid.SubAuthorities, uint32(sub))
	}

	return sid, nil
}

func parseSIDNumber(s string, limit uint64) (uint64, error) {
	if s == "" {
		return 0, ErrMalformedSID
	}

	base := 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		base = 16
		s = s[2:]
	}

	n, err := strconv.ParseUint(s, base, 64)
	if err != nil || n > limit {
		return 0, ErrMalformedSID
	}
	return n, nil
}

// String renders the canonical form. Identifier authorities that do not
// fit in 32 bits are written as 0x-prefixed hexadecimal.
func (s *SID) String() string {
	var b strings.Builder
	b.WriteString("S-")
	b.WriteString(strconv.FormatUint(uint64(s.Revision), 10))
	b.WriteByte('-')
	if s.Authority >= 1<<32 {
		fmt.Fprintf(&b, "0x%012X", s.Authority)
	} else {
		b.WriteString(strconv.FormatUint(s.Authority, 10))
	}
	for _, sub := range s.SubAuthorities {
		b.WriteByte('-')
		b.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return b.String()
}
