//go:build !windows

package account

func platformMessage(code uint32) string {
	return BuiltinMessage(code)
}
