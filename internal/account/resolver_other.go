//go:build !windows

package account

// NewResolver returns the resolver for the current platform.
func NewResolver() Resolver {
	return WellKnownResolver{}
}
