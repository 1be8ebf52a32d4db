package version

// Current is the DOS version every booted session reports through
// INT 21h AH=0x30 and the shell's own VER/banner text.
var (
	Current   = Version{5, 0, 0, ""}
	Copyright = "Copyright (c) 2026 MINIXT86 contributors"
	Hash      = ""
)
