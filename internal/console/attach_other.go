//go:build !windows

package console

// AttachParent is a no-op: processes always inherit their parent's
// terminal outside Windows.
func AttachParent() error {
	return nil
}
