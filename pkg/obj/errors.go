package obj

import "errors"

// Error taxonomy per spec §4.1 / §7.
var (
	ErrBadMagic               = errors.New("bad magic number")
	ErrUnsupportedMajorVer    = errors.New("unsupported major version")
	ErrTruncatedTable         = errors.New("truncated table")
	ErrSectionOverlap         = errors.New("section overlap")
	ErrInvalidSymbolScoping   = errors.New("invalid symbol scoping")
	ErrDanglingRelocation     = errors.New("dangling relocation")
	ErrRegionTypeMismatch     = errors.New("region type mismatch")
	ErrIO                     = errors.New("i/o error")
	ErrInvalidSectionIndex    = errors.New("invalid section index")
	ErrGlobalAlreadyDefined   = errors.New("global symbol already defined")
	ErrExternRedefinedLocal   = errors.New("extern symbol redefined as local/global")
	ErrRelocationOutOfBounds  = errors.New("relocation offset out of section bounds")
)
