package main

import (
	"strings"

	"github.com/tsandoval/minixt86/internal/fat12"
)

// resolvePath turns a command argument into (containing directory,
// bare name), the same absolute-vs-relative and "."/".." handling the
// BIOS/DOS layer's own splitPath gives INT 21h callers, so DIR/TYPE/
// COPY and friends walk the tree the same way a loaded program would.
func (sh *Shell) resolvePath(raw string) (dir []string, name string) {
	if raw == "" {
		return sh.cwd, ""
	}

	// Drive letters are accepted and ignored: this emulator has one
	// volume.
	if len(raw) >= 2 && raw[1] == ':' {
		raw = raw[2:]
	}

	var base []string
	if len(raw) > 0 && (raw[0] == '\\' || raw[0] == '/') {
		base = nil
	} else {
		base = append([]string{}, sh.cwd...)
	}

	parts := fat12.Normalize(raw)
	for _, p := range parts {
		switch p {
		case ".":
		case "..":
			if len(base) > 0 {
				base = base[:len(base)-1]
			}
		default:
			base = append(base, p)
		}
	}
	if len(base) == 0 {
		return nil, ""
	}
	return base[:len(base)-1], base[len(base)-1]
}

// fileExists backs IF EXIST: true when name resolves to either a file
// or a subdirectory in the current directory.
func (sh *Shell) fileExists(name string) bool {
	dir, base := sh.resolvePath(name)
	entries, err := sh.FS.ListDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.EqualFold(e.DisplayName(), base) {
			return true
		}
	}
	return false
}

// resolveDir is resolvePath without splitting off a trailing name, for
// commands (CD, DIR, TREE) that take a directory argument outright.
func (sh *Shell) resolveDir(raw string) []string {
	dir, name := sh.resolvePath(raw)
	if name == "" {
		return dir
	}
	return append(append([]string{}, dir...), name)
}
