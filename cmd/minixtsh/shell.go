// Package main implements a command-line shell sitting in front of
// the FAT12 engine and the loader/session pair.
package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/loader"
	"github.com/tsandoval/minixt86/internal/session"
)

// Shell is the command dispatcher: it owns the path the user is
// "standing in" on the guest filesystem, the SET environment, and the
// one session it hands non-builtin commands to.
type Shell struct {
	FS   *fat12.FileSystem
	Sess *session.Session
	Svc  *bios.Services

	cwd    []string
	env    map[string]string
	path   []string
	prompt string

	// running is true while a loaded program owns the CPU; the host
	// loop feeds it keystrokes instead of the line editor until it
	// halts with StateHaltedExit.
	running bool
	quit    bool

	lastExit byte

	// frontend is set by main once the terminal is up; nil in the
	// tests, which exercise the dispatcher against an in-memory sink
	// instead of a live screen.
	frontend frontend
}

// frontend is the thin surface Shell needs from whatever terminal
// front-end main wires up: one blocking line read (echoed as it's
// typed) and a way to ask for a full redraw after a batch of writes.
type frontend interface {
	readLine() (line string, eof bool)
	redraw()
	clear()
}

// videoWriter adapts the BIOS teletype path to io.Writer, so shell
// output shares the same screen a loaded program writes to.
type videoWriter struct{ svc *bios.Services }

func (w videoWriter) Write(p []byte) (int, error) {
	w.svc.Print(string(p))
	return len(p), nil
}

// NewShell wires a filesystem, a CPU/BIOS pair and the session they
// share into one dispatcher. It does not format the volume; main does
// that before calling it when the disk is blank.
func NewShell(fs *fat12.FileSystem, c *cpu.CPU, svc *bios.Services) *Shell {
	sess := session.New(c, fs, svc)
	sess.PushSink(videoWriter{svc})

	sh := &Shell{
		FS:     fs,
		Sess:   sess,
		Svc:    svc,
		env:    map[string]string{"PROMPT": "$P$G"},
		path:   []string{"C:\\"},
		prompt: "$P$G",
	}
	return sh
}

// out is every builtin's and the program loop's current write target:
// the top of the session's sink stack, which redirection pushes onto
// and pops off of around a single command.
func (sh *Shell) out() io.Writer { return sh.Sess.Sink() }

func (sh *Shell) cwdString() string {
	if len(sh.cwd) == 0 {
		return `C:\`
	}
	return `C:\` + strings.Join(sh.cwd, `\`)
}

// Prompt expands the handful of $-codes command.com's PROMPT supports
// that this shell exercises: $P (path), $G (">"), $N (drive), $$ ("$").
func (sh *Shell) Prompt() string {
	var b strings.Builder
	p := sh.prompt
	for i := 0; i < len(p); i++ {
		if p[i] == '$' && i+1 < len(p) {
			switch p[i+1] {
			case 'P':
				b.WriteString(sh.cwdString())
			case 'G':
				b.WriteByte('>')
			case 'N':
				b.WriteByte('C')
			case '$':
				b.WriteByte('$')
			default:
				b.WriteByte(p[i+1])
			}
			i++
			continue
		}
		b.WriteByte(p[i])
	}
	return b.String()
}

// builtin is one shell-resident command: args are the whitespace-split
// tokens after the command word.
type builtin func(sh *Shell, args []string) error

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"DIR":    cmdDir,
		"CD":     cmdCd,
		"CHDIR":  cmdCd,
		"MD":     cmdMkdir,
		"MKDIR":  cmdMkdir,
		"RD":     cmdRmdir,
		"RMDIR":  cmdRmdir,
		"TYPE":   cmdType,
		"COPY":   cmdCopy,
		"DEL":    cmdDel,
		"ERASE":  cmdDel,
		"REN":    cmdRen,
		"RENAME": cmdRen,
		"MOVE":   cmdMove,
		"ECHO":   cmdEcho,
		"SET":    cmdSet,
		"PATH":   cmdPath,
		"PROMPT": cmdPrompt,
		"FORMAT": cmdFormat,
		"CHKDSK": cmdChkdsk,
		"ATTRIB": cmdAttrib,
		"FIND":   cmdFind,
		"SORT":   cmdSort,
		"TREE":   cmdTree,
		"MEM":    cmdMem,
		"CLS":    cmdCls,
		"VER":    cmdVer,
		"VOL":    cmdVol,
		"HELP":   cmdHelp,
		"EXIT":   cmdExit,
	}
}

// Execute parses and runs one command line, handling redirection/pipe
// tokens, then either a builtin or (falling through) a guest program
// loaded off the FAT12 volume. Batch files are dispatched by
// runProgram to RunBatch.
func (sh *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "REM ") || strings.HasPrefix(line, "::") {
		return nil
	}

	cmdText, redir, err := splitRedirection(line)
	if err != nil {
		fmt.Fprintln(sh.out(), err)
		return nil
	}

	fields := splitArgs(cmdText)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToUpper(fields[0])
	args := fields[1:]

	if redir != nil {
		if err := redir.push(sh); err != nil {
			fmt.Fprintln(sh.out(), err)
			return nil
		}
		defer redir.pop(sh)
	}

	if b, ok := builtins[name]; ok {
		return b(sh, args)
	}
	return sh.runProgram(fields[0], args)
}

// runProgram loads name (trying .COM, .EXE, then .BAT when it has no
// extension) off the current directory and drives it to completion
// through the shared session, the path taken for any non-builtin.
func (sh *Shell) runProgram(name string, args []string) error {
	data, resolved, err := sh.readProgram(name)
	if err != nil {
		fmt.Fprintln(sh.out(), "Bad command or file name")
		return nil
	}

	if strings.HasSuffix(strings.ToUpper(resolved), ".BAT") {
		return sh.RunBatch(string(data), args)
	}

	tail := strings.Join(args, " ")
	loader.Load(sh.Sess.CPU, sh.Svc, data, tail, sh.cwdString()+resolved)

	sh.running = true
	defer func() { sh.running = false }()

	front, interactive := sh.frontend.(*tcellFrontend)
	for sh.Sess.State() == session.StateRunning || sh.Sess.State() == session.StateHaltedKeyWait {
		if interactive {
			front.pumpKeysInto(sh.Svc.PushKey)
		} else if sh.Sess.State() == session.StateHaltedKeyWait {
			// Headless (-boot) runs have no key source to satisfy a
			// StateHaltedKeyWait program, so stop rather than hang.
			break
		}
		sh.Sess.Tick(nil)
		if sh.frontend != nil {
			sh.frontend.redraw()
		}
	}
	sh.lastExit = sh.Sess.ExitCode()
	return nil
}

// readConsoleCapture backs COPY CON: lines typed at the terminal,
// CRLF-terminated, collected until the front-end reports Ctrl-Z (its
// readLine eof return) — DOS's own end-of-console-input convention.
func (sh *Shell) readConsoleCapture() []byte {
	var buf []byte
	for {
		line, eof := sh.frontend.readLine()
		if eof {
			return buf
		}
		buf = append(buf, []byte(line)...)
		buf = append(buf, '\r', '\n')
	}
}

func (sh *Shell) readProgram(name string) (data []byte, resolved string, err error) {
	candidates := []string{name}
	if !strings.Contains(name, ".") {
		candidates = []string{name + ".COM", name + ".EXE", name + ".BAT"}
	}
	for _, c := range candidates {
		if data, err = sh.FS.ReadFile(sh.cwd, c); err == nil {
			return data, c, nil
		}
	}
	return nil, "", err
}

// splitArgs is a small shell-word splitter: double-quoted spans are
// kept as one field (FIND "two words"), everything else splits on
// whitespace.
func splitArgs(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
