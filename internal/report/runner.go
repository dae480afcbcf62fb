// Package report resolves the configured SIDs and writes the resulting
// JSON document.
package report

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/getsidinfo/internal/account"
	"github.com/jacoelho/getsidinfo/internal/config"
	"github.com/jacoelho/getsidinfo/internal/output"
	"github.com/jacoelho/getsidinfo/internal/ratelimit"
	"github.com/spf13/afero"
)

const (
	// DefaultBufferSize bounds the bytes held between flushes to the sink.
	DefaultBufferSize = 4096

	topLevelSeparator = ",\n\n"
	memberSeparator   = ", "
)

// Error codes reported in the "errorcode" member.
const (
	CodeConversionFailed  = "conversion_failed"
	CodeLookupFailed      = "lookup_account_sid_failed"
	CodeNetUserInfoFailed = "net_user_get_info_failed"
)

const (
	msgConversionFailed  = "Unable to convert string to a SID."
	msgLookupFailed      = "Unable to get SID information."
	msgNetUserInfoFailed = "Unable to get network user info."
)

const (
	exitCodeSuccess        = 0
	exitCodeGenericFailure = 1
)

type Runner struct {
	config     *config.Config
	resolver   account.Resolver
	messages   account.MessageFunc
	limiter    *ratelimit.Limiter
	fs         afero.Fs
	bufferSize int
	output     io.Writer
	errOutput  io.Writer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithResolver replaces the platform resolver.
func WithResolver(resolver account.Resolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// WithMessages replaces the lookup of Windows error texts.
func WithMessages(fn account.MessageFunc) Option {
	return func(r *Runner) {
		r.messages = fn
	}
}

// WithFs sets the filesystem the output file is created on.
func WithFs(fsys afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fsys
	}
}

// WithBufferSize sets the capacity of the document buffer.
func WithBufferSize(size int) Option {
	return func(r *Runner) {
		r.bufferSize = size
	}
}

func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		config:     cfg,
		resolver:   account.NewResolver(),
		messages:   account.Message,
		limiter:    ratelimit.New(cfg.RateLimit),
		fs:         afero.NewOsFs(),
		bufferSize: DefaultBufferSize,
		output:     os.Stdout,
		errOutput:  os.Stderr,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SetOutput sets the console writer: stdout output, verbose echo and the
// open failure notice.
func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) consoleWriter() io.Writer {
	if r.output == nil {
		return io.Discard
	}
	return r.output
}

func (r *Runner) errorWriter() io.Writer {
	if r.errOutput == nil {
		return io.Discard
	}
	return r.errOutput
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.consoleWriter(), format, args...)
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errorWriter(), format, args...)
}

// Run writes one document covering every configured SID and returns the
// process exit code. Lookup failures are reported inside the document and
// do not change the exit code.
func (r *Runner) Run(ctx context.Context) int {
	if r.config.Verbose {
		r.printf("Arguments:\n")
		for i, arg := range r.config.Args {
			r.printf("\targv[%d] = %s\n", i, arg)
		}
		r.printf("\n")

		if limit := r.limiter.Limit(); limit > 0 {
			r.printf("Rate limit = %g lookups per second\n\n", limit)
		}
	}

	sink, err := output.Open(r.fs, r.config.OutputFile, r.consoleWriter())
	if err != nil {
		r.printf("Unable to open '%s' for writing.\n", r.config.OutputFile)
		return exitCodeSuccess
	}

	result := r.writeDocument(ctx, sink)

	if err := sink.Close(); err != nil && result == exitCodeSuccess {
		r.logf("Error: closing %s: %v\n", r.config.OutputFile, err)
		result = exitCodeGenericFailure
	}

	if r.config.Verbose {
		r.printf("Return code = %d\n", result)
	}

	return result
}

func (r *Runner) writeDocument(ctx context.Context, sink io.Writer) int {
	doc := newDocument(sink, r.bufferSize)
	result := exitCodeSuccess

	doc.startObject("")

	for i, sid := range r.config.SIDs {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logf("Interrupted after %d of %d SIDs: %v\n", i, len(r.config.SIDs), err)
			result = exitCodeGenericFailure
			break
		}

		r.describe(doc, sid)
	}

	doc.endObject()
	doc.finish()
	doc.flush()

	if doc.err == nil {
		_, doc.err = io.WriteString(sink, "\n")
	}

	if doc.err != nil {
		r.logf("Error: writing output: %v\n", doc.err)
		return exitCodeGenericFailure
	}

	return result
}

// describe writes the member for one SID.
func (r *Runner) describe(doc *document, sid string) {
	doc.separator(topLevelSeparator)
	doc.startObject(sid)
	doc.separator(memberSeparator)

	acct, err := r.resolver.LookupSID(r.config.System, sid)
	switch {
	case err != nil && account.Op(err) == account.OpConvertSID:
		r.writeFailure(doc, msgConversionFailed, CodeConversionFailed, err)
	case err != nil:
		r.writeFailure(doc, msgLookupFailed, CodeLookupFailed, err)
	default:
		doc.appendBool("success", true)
		doc.appendStr("domain", acct.Domain)
		doc.appendStr("account", acct.Name)
		doc.appendUint("type", uint32(acct.Type))

		if acct.Type.HasUserInfo() {
			r.describeUser(doc, acct)
		}
	}

	doc.flush()
	doc.endObject()
}

// describeUser writes the net_info member. The user record is looked up
// on the account's domain.
func (r *Runner) describeUser(doc *document, acct *account.Account) {
	doc.startObject("net_info")
	doc.separator(memberSeparator)

	info, err := r.resolver.UserInfo(acct.Domain, acct.Name)
	if err != nil {
		r.writeFailure(doc, msgNetUserInfoFailed, CodeNetUserInfoFailed, err)
	} else {
		doc.appendBool("success", true)
		writeUserInfo(doc, info)

		// A missing online identity is common; report it as absent
		// rather than as a failure.
		identity, err := r.resolver.InternetIdentity(acct.Domain, acct.Name)
		if err != nil || identity == nil || !identity.Enabled {
			doc.appendBool("internet_identity", false)
		} else {
			doc.appendBool("internet_identity", true)
			doc.appendStr("internet_provider", identity.Provider)
			doc.appendStr("internet_principal", identity.Principal)
		}

		doc.flush()
	}

	doc.endObject()
}

func (r *Runner) writeFailure(doc *document, message, code string, err error) {
	winerror := account.Code(err)

	doc.appendBool("success", false)
	doc.appendStr("error", message)
	doc.appendStr("errorcode", code)
	doc.appendStr("winerror", r.messages(winerror))
	doc.appendUint("winerrorcode", winerror)
	doc.flush()
}

// writeUserInfo writes the level-4 user record. Expiry and quota are
// signed so that "never" and "unlimited" read as -1.
func writeUserInfo(doc *document, info *account.UserInfo) {
	doc.appendStr("full_name", info.FullName)
	doc.appendStr("comment", info.Comment)
	doc.appendStr("user_comment", info.UserComment)
	doc.appendUint("password_age", info.PasswordAge)
	doc.appendUint("password_expired", info.PasswordExpired)
	doc.appendInt("bad_passwords", int32(info.BadPasswordCount))
	doc.appendInt("num_logons", int32(info.NumLogons))
	doc.appendUint("priv_level", info.Privilege)
	doc.appendUint("flags", info.Flags)
	doc.appendUint("auth_flags", info.AuthFlags)
	doc.appendStr("home_dir", info.HomeDir)
	doc.appendStr("home_dir_drive", info.HomeDirDrive)
	doc.appendStr("profile", info.Profile)
	doc.appendStr("script_path", info.ScriptPath)
	doc.appendStr("params", info.Parameters)
	doc.appendStr("workstations", info.Workstations)
	doc.appendUint("last_logon", info.LastLogon)
	doc.appendUint("last_logoff", info.LastLogoff)
	doc.appendInt("acct_expires", int32(info.AccountExpires))
	doc.appendInt("disk_quota", int32(info.MaxStorage))
	doc.appendUint("units_per_week", info.UnitsPerWeek)
	doc.appendStr("logon_hours", hex.EncodeToString(info.LogonHours[:]))
	doc.appendStr("logon_server", info.LogonServer)
	doc.appendUint("country_code", info.CountryCode)
	doc.appendUint("code_page", info.CodePage)
	doc.appendUint("primary_group_id", info.PrimaryGroupID)
}
