// Package console connects a process started without a console window to
// the console of its parent.
package console
