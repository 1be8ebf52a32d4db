package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/version"
)

// dosTime/dosDate unpack the packed fields directory-entry
// layout describes (hours<<11|minutes<<5|seconds/2, and
// (year-1980)<<9|month<<5|day) for DIR's listing.
func dosTime(t uint16) (h, m int) { return int(t >> 11), int((t >> 5) & 0x3F) }
func dosDate(d uint16) (y, mo, day int) {
	return 1980 + int(d>>9), int((d >> 5) & 0xF), int(d & 0x1F)
}

func cmdDir(sh *Shell, args []string) error {
	wide, bare := false, false
	var target string
	for _, a := range args {
		switch strings.ToUpper(a) {
		case "/W":
			wide = true
		case "/B":
			bare = true
		default:
			target = a
		}
	}

	dir := sh.resolveDir(target)
	entries, err := sh.FS.ListDir(dir)
	if err != nil {
		fmt.Fprintln(sh.out(), dirError(err))
		return nil
	}

	out := sh.out()
	if !bare {
		fmt.Fprintf(out, " Directory of %s\n\n", sh.cwdString())
	}

	var files, dirs int
	var totalSize uint32
	col := 0
	for _, e := range entries {
		if e.IsVolumeLabel() {
			continue
		}
		if bare {
			fmt.Fprintln(out, e.DisplayName())
			continue
		}
		if wide {
			fmt.Fprintf(out, "%-14s", e.DisplayName())
			col++
			if col == 5 {
				fmt.Fprintln(out)
				col = 0
			}
			continue
		}
		y, mo, day := dosDate(e.WriteDate)
		h, mi := dosTime(e.WriteTime)
		if e.IsDir() {
			dirs++
			fmt.Fprintf(out, "%02d-%02d-%04d  %02d:%02d  <DIR>         %s\n", mo, day, y, h, mi, e.DisplayName())
			continue
		}
		files++
		totalSize += e.FileSize
		fmt.Fprintf(out, "%02d-%02d-%04d  %02d:%02d  %10d  %s\n", mo, day, y, h, mi, e.FileSize, e.DisplayName())
	}
	if wide && col != 0 {
		fmt.Fprintln(out)
	}
	if !bare {
		fmt.Fprintf(out, "%15d file(s)  %10d bytes\n", files, totalSize)
		fmt.Fprintf(out, "%15d dir(s)  %10d bytes free\n", dirs, sh.FS.FreeClusters()*fat12.BytesPerSector)
	}
	return nil
}

func dirError(err error) string {
	switch err {
	case fat12.ErrNotFound:
		return "Invalid directory"
	default:
		return err.Error()
	}
}

func cmdCd(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), sh.cwdString())
		return nil
	}
	target := sh.resolveDir(args[0])
	if len(target) > 0 {
		entries, err := sh.FS.ListDir(target[:len(target)-1])
		if err != nil {
			fmt.Fprintln(sh.out(), "Invalid directory")
			return nil
		}
		found := false
		for _, e := range entries {
			if e.IsDir() && strings.EqualFold(e.DisplayName(), target[len(target)-1]) {
				found = true
			}
		}
		if !found {
			fmt.Fprintln(sh.out(), "Invalid directory")
			return nil
		}
	}
	sh.cwd = target
	return nil
}

func cmdMkdir(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[0])
	if err := sh.FS.Mkdir(dir, name); err != nil {
		fmt.Fprintln(sh.out(), mkdirError(err))
	}
	return nil
}

func mkdirError(err error) string {
	switch err {
	case fat12.ErrAlreadyExists:
		return "Unable to create directory"
	case fat12.ErrDirectoryFull:
		return "Unable to create directory"
	default:
		return err.Error()
	}
}

func cmdRmdir(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[0])
	found, err := sh.FS.DeleteEntry(dir, name)
	if err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	if !found {
		fmt.Fprintln(sh.out(), "Invalid path")
	}
	return nil
}

func cmdType(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	for _, a := range args {
		dir, name := sh.resolvePath(a)
		data, err := sh.FS.ReadFile(dir, name)
		if err != nil {
			fmt.Fprintf(sh.out(), "File not found - %s\n", name)
			continue
		}
		sh.out().Write(data)
	}
	return nil
}

// cmdCopy implements COPY src dst and COPY CON dst, the console-capture
// form: CON reads lines typed at the shell up to a lone Ctrl-Z, used by
// minixtsh's own line-editor loop when src is CON.
func cmdCopy(sh *Shell, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	src, dst := args[0], args[1]

	if strings.EqualFold(src, "CON") {
		if sh.frontend == nil {
			fmt.Fprintln(sh.out(), "COPY CON requires an interactive session")
			return nil
		}
		data := sh.readConsoleCapture()
		dir, name := sh.resolvePath(dst)
		if err := sh.FS.WriteFile(dir, name, data); err != nil {
			fmt.Fprintln(sh.out(), err)
			return nil
		}
		fmt.Fprintln(sh.out(), "        1 file(s) copied")
		return nil
	}

	srcDir, srcName := sh.resolvePath(src)
	data, err := sh.FS.ReadFile(srcDir, srcName)
	if err != nil {
		fmt.Fprintf(sh.out(), "File not found - %s\n", srcName)
		return nil
	}

	dstDir, dstName := sh.resolvePath(dst)
	if dstName == "" {
		dstName = srcName
	}
	if err := sh.FS.WriteFile(dstDir, dstName, data); err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	fmt.Fprintln(sh.out(), "        1 file(s) copied")
	return nil
}

func cmdDel(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[0])
	found, err := sh.FS.DeleteEntry(dir, name)
	if err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	if !found {
		fmt.Fprintln(sh.out(), "File not found")
	}
	return nil
}

func cmdRen(sh *Shell, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[0])
	if err := sh.FS.RenameEntry(dir, name, args[1]); err != nil {
		fmt.Fprintln(sh.out(), "File not found")
	}
	return nil
}

// cmdMove is REN/copy-then-delete when the destination directory
// differs, since the FAT12 engine's RenameEntry only ever relabels a
// slot in place and gives it no cross-directory move.
func cmdMove(sh *Shell, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	srcDir, srcName := sh.resolvePath(args[0])
	dstDir, dstName := sh.resolvePath(args[1])
	if dstName == "" {
		dstName = srcName
	}

	if sameDir(srcDir, dstDir) {
		if err := sh.FS.RenameEntry(srcDir, srcName, dstName); err != nil {
			fmt.Fprintln(sh.out(), "File not found")
		}
		return nil
	}

	data, err := sh.FS.ReadFile(srcDir, srcName)
	if err != nil {
		fmt.Fprintln(sh.out(), "File not found")
		return nil
	}
	if err := sh.FS.WriteFile(dstDir, dstName, data); err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	sh.FS.DeleteEntry(srcDir, srcName)
	fmt.Fprintln(sh.out(), "        1 file(s) moved")
	return nil
}

func sameDir(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// cmdEcho expands %VAR% references against sh.env before printing, the
// one bit of variable substitution batch-file handling needs outside
// of FOR/IF.
func cmdEcho(sh *Shell, args []string) error {
	line := strings.Join(args, " ")
	if strings.EqualFold(line, "OFF") || strings.EqualFold(line, "ON") {
		return nil
	}
	fmt.Fprintln(sh.out(), sh.expandVars(line))
	return nil
}

func (sh *Shell) expandVars(s string) string {
	for _, k := range sortedKeys(sh.env) {
		s = strings.ReplaceAll(s, "%"+k+"%", sh.env[k])
	}
	return s
}

func cmdSet(sh *Shell, args []string) error {
	if len(args) == 0 {
		for _, k := range sortedKeys(sh.env) {
			fmt.Fprintf(sh.out(), "%s=%s\n", k, sh.env[k])
		}
		return nil
	}
	assignment := strings.Join(args, " ")
	i := strings.Index(assignment, "=")
	if i < 0 {
		fmt.Fprintln(sh.out(), "Syntax error")
		return nil
	}
	key := strings.ToUpper(strings.TrimSpace(assignment[:i]))
	val := assignment[i+1:]
	if val == "" {
		delete(sh.env, key)
		return nil
	}
	sh.env[key] = val
	return nil
}

func cmdPath(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(sh.out(), "PATH=%s\n", strings.Join(sh.path, ";"))
		return nil
	}
	sh.path = strings.Split(strings.Join(args, " "), ";")
	return nil
}

func cmdPrompt(sh *Shell, args []string) error {
	if len(args) == 0 {
		sh.prompt = "$P$G"
		return nil
	}
	sh.prompt = strings.Join(args, " ")
	return nil
}

// cmdFormat implements FORMAT /Y: re-initialise the volume in place.
// Any confirmation real FORMAT would print is skipped when
// /Y is given, the unattended form this shell always requires since it
// has no interactive yes/no prompt of its own.
func cmdFormat(sh *Shell, args []string) error {
	confirmed := false
	for _, a := range args {
		if strings.EqualFold(a, "/Y") {
			confirmed = true
		}
	}
	if !confirmed {
		fmt.Fprintln(sh.out(), "FORMAT requires /Y to proceed unattended")
		return nil
	}
	if err := sh.FS.Format("MINIXT86"); err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	sh.cwd = nil
	fmt.Fprintln(sh.out(), "Format complete.")
	return nil
}

func cmdChkdsk(sh *Shell, args []string) error {
	free := sh.FS.FreeClusters() * fat12.BytesPerSector
	total := fat12.TotalSectorCount() * fat12.BytesPerSector
	out := sh.out()
	fmt.Fprintf(out, "%10d bytes total disk space\n", total)
	fmt.Fprintf(out, "%10d bytes available on disk\n", free)
	return nil
}

func cmdAttrib(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[len(args)-1])
	entries, err := sh.FS.ListDir(dir)
	if err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}
	for _, e := range entries {
		if strings.EqualFold(e.DisplayName(), name) {
			fmt.Fprintf(sh.out(), "%s  %s\n", attrString(e.Attr), e.DisplayName())
			return nil
		}
	}
	fmt.Fprintln(sh.out(), "File not found")
	return nil
}

func attrString(attr byte) string {
	flag := func(bit byte, letter string) string {
		if attr&bit != 0 {
			return letter
		}
		return " "
	}
	return flag(fat12.AttrReadOnly, "R") + flag(fat12.AttrHidden, "H") +
		flag(fat12.AttrSystem, "S") + flag(fat12.AttrArchive, "A")
}

// cmdFind implements FIND "string" file: a grep over one or more
// files' lines, the classic DOS FIND's one job.
func cmdFind(sh *Shell, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	needle := args[0]
	for _, fname := range args[1:] {
		dir, name := sh.resolvePath(fname)
		data, err := sh.FS.ReadFile(dir, name)
		if err != nil {
			fmt.Fprintf(sh.out(), "File not found - %s\n", name)
			continue
		}
		fmt.Fprintf(sh.out(), "\n---------- %s\n", name)
		for _, line := range strings.Split(string(data), "\n") {
			if strings.Contains(line, needle) {
				fmt.Fprintln(sh.out(), line)
			}
		}
	}
	return nil
}

// cmdSort reads a file (or, with no argument, nothing useful without a
// live stdin pipe) and writes its lines back in sorted order, the one
// transformation DOS SORT performs.
func cmdSort(sh *Shell, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out(), "Required parameter missing")
		return nil
	}
	dir, name := sh.resolvePath(args[0])
	data, err := sh.FS.ReadFile(dir, name)
	if err != nil {
		fmt.Fprintf(sh.out(), "File not found - %s\n", name)
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(sh.out(), l)
	}
	return nil
}

func cmdTree(sh *Shell, args []string) error {
	root := sh.resolveDir(firstOr(args, ""))
	printTree(sh, root, 0)
	return nil
}

func firstOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

func printTree(sh *Shell, dir []string, depth int) {
	entries, err := sh.FS.ListDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || e.IsVolumeLabel() || e.Name == "." || e.Name == ".." {
			continue
		}
		fmt.Fprintf(sh.out(), "%s%s\n", strings.Repeat("|   ", depth), e.DisplayName())
		printTree(sh, append(append([]string{}, dir...), e.DisplayName()), depth+1)
	}
}

func cmdMem(sh *Shell, args []string) error {
	fmt.Fprintf(sh.out(), "%d KB free base memory\n", (bios.MemoryBumpBase-0x70)*16/1024)
	return nil
}

func cmdCls(sh *Shell, args []string) error {
	if sh.frontend != nil {
		sh.frontend.clear()
	}
	return nil
}

func cmdVer(sh *Shell, args []string) error {
	fmt.Fprintf(sh.out(), "MINIXT86 DOS Version %s\n", version.Current.String())
	return nil
}

func cmdVol(sh *Shell, args []string) error {
	fmt.Fprintln(sh.out(), " Volume in drive C is MINIXT86")
	return nil
}

func cmdHelp(sh *Shell, args []string) error {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(sh.out(), strings.Join(names, "  "))
	return nil
}

func cmdExit(sh *Shell, args []string) error {
	sh.quit = true
	return nil
}
