package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/getsidinfo/internal/account"
	"github.com/jacoelho/getsidinfo/internal/config"
	"github.com/spf13/afero"
	"github.com/theory/jsonpath"
)

const (
	userSID    = "S-1-5-21-1004336348-1177238915-682003330-1001"
	deletedSID = "S-1-5-21-1004336348-1177238915-682003330-1002"
)

type fakeResolver struct {
	accounts    map[string]*account.Account
	lookupErr   map[string]error
	info        *account.UserInfo
	infoErr     error
	identity    *account.InternetIdentity
	identityErr error

	systems []string
	servers []string
}

func (f *fakeResolver) LookupSID(system, sid string) (*account.Account, error) {
	f.systems = append(f.systems, system)

	if err, ok := f.lookupErr[sid]; ok {
		return nil, err
	}
	if acct, ok := f.accounts[sid]; ok {
		return acct, nil
	}
	return nil, &account.Error{Op: account.OpLookupAccountSID, Code: account.ErrorNoneMapped}
}

func (f *fakeResolver) UserInfo(server, _ string) (*account.UserInfo, error) {
	f.servers = append(f.servers, server)

	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeResolver) InternetIdentity(_, _ string) (*account.InternetIdentity, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identity, nil
}

func testMessages(code uint32) string {
	return fmt.Sprintf("message %d", code)
}

func sampleUserInfo() *account.UserInfo {
	info := &account.UserInfo{
		FullName:         "Ada Lovelace",
		Comment:          "Analyst",
		UserComment:      "line1\nline2",
		PasswordAge:      3600,
		BadPasswordCount: 2,
		NumLogons:        17,
		Privilege:        1,
		Flags:            0x201,
		HomeDir:          `C:\Users\ada`,
		HomeDirDrive:     "H:",
		LastLogon:        1700000000,
		AccountExpires:   0xFFFFFFFF,
		MaxStorage:       0xFFFFFFFF,
		UnitsPerWeek:     168,
		LogonServer:      `\\*`,
		CodePage:         1252,
		PrimaryGroupID:   513,
	}
	for i := range info.LogonHours {
		info.LogonHours[i] = 0xff
	}
	info.LogonHours[0] = 0x0a
	return info
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		accounts: map[string]*account.Account{
			userSID:    {SID: userSID, Domain: "WORKSTATION", Name: "ada", Type: account.SidTypeUser},
			deletedSID: {SID: deletedSID, Domain: "WORKSTATION", Name: "gone", Type: account.SidTypeDeletedAccount},
		},
		info: sampleUserInfo(),
	}
}

type runResult struct {
	exitCode int
	stdout   string
	stderr   string
}

func runReport(t *testing.T, ctx context.Context, cfg *config.Config, opts ...Option) runResult {
	t.Helper()

	opts = append([]Option{
		WithResolver(account.WellKnownResolver{}),
		WithMessages(testMessages),
		WithFs(afero.NewMemMapFs()),
	}, opts...)

	var stdout, stderr bytes.Buffer
	r := New(cfg, opts...)
	r.SetOutput(&stdout)
	r.SetErrorOutput(&stderr)

	exitCode := r.Run(ctx)
	return runResult{exitCode: exitCode, stdout: stdout.String(), stderr: stderr.String()}
}

func decode(t *testing.T, text string) any {
	t.Helper()

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, text)
	}
	return data
}

func selectOne(t *testing.T, data any, expr string) any {
	t.Helper()

	path, err := jsonpath.Parse(expr)
	if err != nil {
		t.Fatalf("jsonpath.Parse(%q) error = %v", expr, err)
	}

	results := path.Select(data)
	if len(results) != 1 {
		t.Fatalf("%s matched %d nodes, want 1", expr, len(results))
	}
	return results[0]
}

func assertMissing(t *testing.T, data any, expr string) {
	t.Helper()

	path, err := jsonpath.Parse(expr)
	if err != nil {
		t.Fatalf("jsonpath.Parse(%q) error = %v", expr, err)
	}
	if results := path.Select(data); len(results) != 0 {
		t.Errorf("%s = %v, want no match", expr, results)
	}
}

func TestRun_WellKnownGroupGolden(t *testing.T) {
	cfg := &config.Config{
		Args: []string{"getsidinfo", "S-1-5-32-544"},
		SIDs: []string{"S-1-5-32-544"},
	}

	got := runReport(t, context.Background(), cfg)

	want := `{"S-1-5-32-544":{"success":true, "domain":"BUILTIN", "account":"Administrators", "type":4}}` + "\n"
	if got.stdout != want {
		t.Errorf("stdout = %q, want %q", got.stdout, want)
	}
	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
	if got.stderr != "" {
		t.Errorf("stderr = %q, want empty", got.stderr)
	}
}

func TestRun_ConversionFailure(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"NOT-A-SID"}}

	got := runReport(t, context.Background(), cfg)
	data := decode(t, got.stdout)

	want := map[string]any{
		"NOT-A-SID": map[string]any{
			"success":      false,
			"error":        "Unable to convert string to a SID.",
			"errorcode":    "conversion_failed",
			"winerror":     "message 1337",
			"winerrorcode": float64(1337),
		},
	}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("document = %v, want %v", data, want)
	}
	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
}

func TestRun_EmptySIDIsReportedInline(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-5-18", ""}}

	got := runReport(t, context.Background(), cfg)

	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
	if !strings.Contains(got.stdout, "},\n\n\"\":{\"success\":false, ") {
		t.Errorf("stdout does not carry an entry for the empty SID:\n%s", got.stdout)
	}

	data := decode(t, got.stdout)
	if v := selectOne(t, data, `$['S-1-5-18'].success`); v != true {
		t.Errorf("S-1-5-18 success = %v, want true", v)
	}
	if v := selectOne(t, data, `$[''].errorcode`); v != "conversion_failed" {
		t.Errorf("empty SID errorcode = %v, want conversion_failed", v)
	}
	if v := selectOne(t, data, `$[''].winerrorcode`); v != float64(1337) {
		t.Errorf("empty SID winerrorcode = %v, want 1337", v)
	}
}

func TestRun_LookupFailure(t *testing.T) {
	resolver := newFakeResolver()
	resolver.lookupErr = map[string]error{
		"S-1-5-21-1-2-3-500": &account.Error{Op: account.OpLookupAccountSID, Code: account.ErrorRPCUnavailable},
	}
	cfg := &config.Config{SIDs: []string{"S-1-5-21-1-2-3-500"}, System: "DC01"}

	got := runReport(t, context.Background(), cfg, WithResolver(resolver))
	data := decode(t, got.stdout)

	if v := selectOne(t, data, `$['S-1-5-21-1-2-3-500'].errorcode`); v != "lookup_account_sid_failed" {
		t.Errorf("errorcode = %v, want lookup_account_sid_failed", v)
	}
	if v := selectOne(t, data, `$['S-1-5-21-1-2-3-500'].error`); v != "Unable to get SID information." {
		t.Errorf("error = %v", v)
	}
	if v := selectOne(t, data, `$['S-1-5-21-1-2-3-500'].winerror`); v != "message 1722" {
		t.Errorf("winerror = %v, want message 1722", v)
	}
	if !reflect.DeepEqual(resolver.systems, []string{"DC01"}) {
		t.Errorf("lookup systems = %v, want [DC01]", resolver.systems)
	}
}

func TestRun_MultipleSIDs(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-5-32-544", "NOT-A-SID"}}

	got := runReport(t, context.Background(), cfg)

	if !strings.Contains(got.stdout, "},\n\n\"NOT-A-SID\":{") {
		t.Errorf("stdout does not separate SIDs with a blank line:\n%s", got.stdout)
	}
	if !strings.HasSuffix(got.stdout, "}}\n") {
		t.Errorf("stdout = %q, want trailing newline after the root object", got.stdout)
	}

	data, ok := decode(t, got.stdout).(map[string]any)
	if !ok {
		t.Fatalf("document root is not an object")
	}
	if len(data) != 2 {
		t.Errorf("document has %d members, want 2", len(data))
	}
	if v := selectOne(t, data, `$['S-1-5-32-544'].success`); v != true {
		t.Errorf("S-1-5-32-544 success = %v, want true", v)
	}
	if v := selectOne(t, data, `$['NOT-A-SID'].success`); v != false {
		t.Errorf("NOT-A-SID success = %v, want false", v)
	}
}

func TestRun_UserInfo(t *testing.T) {
	resolver := newFakeResolver()
	resolver.identity = &account.InternetIdentity{Enabled: true, Provider: "MicrosoftAccount", Principal: "ada@example.com"}
	cfg := &config.Config{SIDs: []string{userSID}}

	got := runReport(t, context.Background(), cfg, WithResolver(resolver))
	data := decode(t, got.stdout)

	if !strings.Contains(got.stdout, `"type":1, "net_info":{"success":true, "full_name":"Ada Lovelace", "comment":"Analyst", `) {
		t.Errorf("net_info prefix not found in:\n%s", got.stdout)
	}

	base := "$['" + userSID + "'].net_info"
	tests := []struct {
		path string
		want any
	}{
		{path: base + ".success", want: true},
		{path: base + ".user_comment", want: "line1\nline2"},
		{path: base + ".password_age", want: float64(3600)},
		{path: base + ".password_expired", want: float64(0)},
		{path: base + ".bad_passwords", want: float64(2)},
		{path: base + ".num_logons", want: float64(17)},
		{path: base + ".flags", want: float64(0x201)},
		{path: base + ".home_dir", want: `C:\Users\ada`},
		{path: base + ".last_logon", want: float64(1700000000)},
		{path: base + ".acct_expires", want: float64(-1)},
		{path: base + ".disk_quota", want: float64(-1)},
		{path: base + ".units_per_week", want: float64(168)},
		{path: base + ".logon_hours", want: "0a" + strings.Repeat("ff", 20)},
		{path: base + ".logon_server", want: `\\*`},
		{path: base + ".code_page", want: float64(1252)},
		{path: base + ".primary_group_id", want: float64(513)},
		{path: base + ".internet_identity", want: true},
		{path: base + ".internet_provider", want: "MicrosoftAccount"},
		{path: base + ".internet_principal", want: "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := selectOne(t, data, tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.path, got, tt.want)
			}
		})
	}

	if !reflect.DeepEqual(resolver.servers, []string{"WORKSTATION"}) {
		t.Errorf("user info servers = %v, want [WORKSTATION]", resolver.servers)
	}
}

func TestRun_DeletedAccountHasUserInfo(t *testing.T) {
	resolver := newFakeResolver()
	resolver.infoErr = &account.Error{Op: account.OpNetUserGetInfo, Code: account.NerrUserNotFound}
	cfg := &config.Config{SIDs: []string{deletedSID}}

	got := runReport(t, context.Background(), cfg, WithResolver(resolver))
	data := decode(t, got.stdout)

	base := "$['" + deletedSID + "']"
	if v := selectOne(t, data, base+".success"); v != true {
		t.Errorf("success = %v, want true", v)
	}
	if v := selectOne(t, data, base+".type"); v != float64(6) {
		t.Errorf("type = %v, want 6", v)
	}

	want := map[string]any{
		"success":      false,
		"error":        "Unable to get network user info.",
		"errorcode":    "net_user_get_info_failed",
		"winerror":     "message 2221",
		"winerrorcode": float64(2221),
	}
	if v := selectOne(t, data, base+".net_info"); !reflect.DeepEqual(v, want) {
		t.Errorf("net_info = %v, want %v", v, want)
	}
	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
}

func TestRun_InternetIdentityUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		identity    *account.InternetIdentity
		identityErr error
	}{
		{name: "error", identityErr: &account.Error{Op: account.OpNetUserGetInfo, Code: account.ErrorInvalidParameter}},
		{name: "not_linked", identity: &account.InternetIdentity{}},
		{name: "nil", identity: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newFakeResolver()
			resolver.identity = tt.identity
			resolver.identityErr = tt.identityErr
			cfg := &config.Config{SIDs: []string{userSID}}

			got := runReport(t, context.Background(), cfg, WithResolver(resolver))
			data := decode(t, got.stdout)

			base := "$['" + userSID + "'].net_info"
			if v := selectOne(t, data, base+".success"); v != true {
				t.Errorf("net_info success = %v, want true", v)
			}
			if v := selectOne(t, data, base+".internet_identity"); v != false {
				t.Errorf("internet_identity = %v, want false", v)
			}
			assertMissing(t, data, base+".internet_provider")
			assertMissing(t, data, base+".internet_principal")
		})
	}
}

func TestRun_NoUserInfoForGroups(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-5-18"}}

	got := runReport(t, context.Background(), cfg)
	data := decode(t, got.stdout)

	if v := selectOne(t, data, `$['S-1-5-18'].account`); v != "SYSTEM" {
		t.Errorf("account = %v, want SYSTEM", v)
	}
	assertMissing(t, data, `$['S-1-5-18'].net_info`)
}

func TestRun_Verbose(t *testing.T) {
	cfg := &config.Config{
		Args:    []string{"getsidinfo", "/v", "S-1-5-32-544"},
		SIDs:    []string{"S-1-5-32-544"},
		Verbose: true,
	}

	got := runReport(t, context.Background(), cfg)

	wantPrefix := "Arguments:\n\targv[0] = getsidinfo\n\targv[1] = /v\n\targv[2] = S-1-5-32-544\n\n{"
	if !strings.HasPrefix(got.stdout, wantPrefix) {
		t.Errorf("stdout = %q, want prefix %q", got.stdout, wantPrefix)
	}
	if !strings.HasSuffix(got.stdout, "}}\nReturn code = 0\n") {
		t.Errorf("stdout = %q, want return code trailer", got.stdout)
	}
}

func TestRun_VerboseRateLimit(t *testing.T) {
	cfg := &config.Config{
		Args:      []string{"getsidinfo", "/v", "/rate=2.5", "S-1-1-0"},
		SIDs:      []string{"S-1-1-0"},
		Verbose:   true,
		RateLimit: 2.5,
	}

	got := runReport(t, context.Background(), cfg)

	want := "\targv[3] = S-1-1-0\n\nRate limit = 2.5 lookups per second\n\n{"
	if !strings.Contains(got.stdout, want) {
		t.Errorf("stdout = %q, want it to contain %q", got.stdout, want)
	}
}

func TestRun_OutputFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "out.json", []byte("stale content that is longer than the report"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{SIDs: []string{"S-1-1-0"}, OutputFile: "out.json"}

	got := runReport(t, context.Background(), cfg, WithFs(fsys))

	if got.stdout != "" {
		t.Errorf("stdout = %q, want empty", got.stdout)
	}

	content, err := afero.ReadFile(fsys, "out.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := `{"S-1-1-0":{"success":true, "domain":"", "account":"Everyone", "type":5}}` + "\n"
	if string(content) != want {
		t.Errorf("out.json = %q, want %q", content, want)
	}
}

func TestRun_OutputFileOpenFailure(t *testing.T) {
	cfg := &config.Config{
		SIDs:       []string{"S-1-1-0"},
		OutputFile: "out.json",
		Verbose:    true,
	}

	got := runReport(t, context.Background(), cfg, WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))

	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
	if !strings.HasSuffix(got.stdout, "\nUnable to open 'out.json' for writing.\n") {
		t.Errorf("stdout = %q, want open failure notice", got.stdout)
	}
	if strings.Contains(got.stdout, "{") || strings.Contains(got.stdout, "Return code") {
		t.Errorf("stdout = %q, want no document and no return code", got.stdout)
	}
}

func TestRun_SmallBufferStaysValid(t *testing.T) {
	resolver := newFakeResolver()
	cfg := &config.Config{SIDs: []string{userSID, "S-1-5-32-544", deletedSID}}

	small := runReport(t, context.Background(), cfg, WithResolver(resolver), WithBufferSize(96))
	large := runReport(t, context.Background(), cfg, WithResolver(newFakeResolver()))

	if small.exitCode != 0 {
		t.Fatalf("exit code = %d, stderr = %q", small.exitCode, small.stderr)
	}
	if small.stdout != large.stdout {
		t.Errorf("small buffer output differs:\n%s\nwant\n%s", small.stdout, large.stdout)
	}
	decode(t, small.stdout)
}

func TestRun_MemberLargerThanBuffer(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-5-32-544"}}

	got := runReport(t, context.Background(), cfg, WithBufferSize(8))

	if got.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", got.exitCode)
	}
	if !strings.Contains(got.stderr, "buffer") {
		t.Errorf("stderr = %q, want buffer error", got.stderr)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &config.Config{SIDs: []string{"S-1-5-32-544", "S-1-5-18"}}

	got := runReport(t, ctx, cfg)

	if got.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", got.exitCode)
	}
	if got.stdout != "{}\n" {
		t.Errorf("stdout = %q, want %q", got.stdout, "{}\n")
	}
	if !strings.Contains(got.stderr, "Interrupted after 0 of 2 SIDs") {
		t.Errorf("stderr = %q, want interruption notice", got.stderr)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRun_SinkWriteFailure(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-5-32-544"}}

	var stderr bytes.Buffer
	r := New(cfg, WithResolver(account.WellKnownResolver{}), WithMessages(testMessages))
	r.SetOutput(failingWriter{})
	r.SetErrorOutput(&stderr)

	if code := r.Run(context.Background()); code != 1 {
		t.Errorf("Run() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "disk full") {
		t.Errorf("stderr = %q, want sink error", stderr.String())
	}
}

func TestRun_RateLimited(t *testing.T) {
	cfg := &config.Config{SIDs: []string{"S-1-1-0", "S-1-5-18", "S-1-5-32-544"}, RateLimit: 1000}

	got := runReport(t, context.Background(), cfg)

	if got.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", got.exitCode)
	}
	if data, ok := decode(t, got.stdout).(map[string]any); !ok || len(data) != 3 {
		t.Errorf("document = %v, want 3 members", data)
	}
}
