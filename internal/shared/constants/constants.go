package constants

import "io/fs"

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// MaxRedirects caps how many redirects a header fetch will follow.
	MaxRedirects = 10
	// BodyDiscardLimitBytes bounds how much of a response body we drain
	// before closing; only the headers matter to the scan.
	BodyDiscardLimitBytes = 1 << 20
)
