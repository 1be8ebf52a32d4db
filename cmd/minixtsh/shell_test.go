package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/internal/storage"
)

// newTestShell wires a Shell against an in-memory FAT12 volume with no
// frontend, the dispatcher-only configuration shell.go's frontend field
// doc comment anticipates.
func newTestShell(t *testing.T) *Shell {
	t.Helper()
	fs := fat12.New(storage.NewMemStore(t.Name()))
	if err := fs.Format("TEST"); err != nil {
		t.Fatal(err)
	}
	mem := memory.New()
	p := cpu.New(mem, nil)
	svc := bios.New(p, fs, slog.Default())
	return NewShell(fs, p, svc)
}

// captureBuiltin pushes a byte-buffer sink so a builtin's output can be
// inspected directly instead of reading it back off the shared video
// buffer.
func captureBuiltin(t *testing.T, sh *Shell, line string) string {
	t.Helper()
	var buf bytes.Buffer
	sh.Sess.PushSink(&buf)
	defer sh.Sess.PopSink()
	if err := sh.Execute(line); err != nil {
		t.Fatalf("Execute(%q) = %v", line, err)
	}
	return buf.String()
}

func TestMkdirCdAndDir(t *testing.T) {
	sh := newTestShell(t)

	if out := captureBuiltin(t, sh, "MD SUBDIR"); out != "" {
		t.Fatalf("MD SUBDIR produced output %q, want none", out)
	}
	out := captureBuiltin(t, sh, "DIR")
	if !strings.Contains(out, "SUBDIR") {
		t.Fatalf("DIR output %q does not list SUBDIR", out)
	}

	if out := captureBuiltin(t, sh, "CD SUBDIR"); out != "" {
		t.Fatalf("CD SUBDIR produced output %q, want none", out)
	}
	if got := sh.cwdString(); got != `C:\SUBDIR` {
		t.Fatalf("cwdString() = %q, want C:\\SUBDIR", got)
	}

	captureBuiltin(t, sh, "CD ..")
	if got := sh.cwdString(); got != `C:\` {
		t.Fatalf("cwdString() after CD .. = %q, want C:\\", got)
	}
}

func TestTypeAndCopy(t *testing.T) {
	sh := newTestShell(t)
	if err := sh.FS.WriteFile(nil, "HELLO.TXT", []byte("hi there")); err != nil {
		t.Fatal(err)
	}

	out := captureBuiltin(t, sh, "TYPE HELLO.TXT")
	if !strings.Contains(out, "hi there") {
		t.Fatalf("TYPE output %q does not contain file contents", out)
	}

	captureBuiltin(t, sh, "COPY HELLO.TXT WORLD.TXT")
	data, err := sh.FS.ReadFile(nil, "WORLD.TXT")
	if err != nil {
		t.Fatalf("ReadFile(WORLD.TXT) = %v", err)
	}
	if string(data) != "hi there" {
		t.Fatalf("WORLD.TXT = %q, want %q", data, "hi there")
	}
}

func TestRenThenDel(t *testing.T) {
	sh := newTestShell(t)
	if err := sh.FS.WriteFile(nil, "A.TXT", []byte("aaa")); err != nil {
		t.Fatal(err)
	}

	captureBuiltin(t, sh, "REN A.TXT B.TXT")
	if _, err := sh.FS.ReadFile(nil, "A.TXT"); err == nil {
		t.Fatalf("A.TXT still exists after REN")
	}
	if _, err := sh.FS.ReadFile(nil, "B.TXT"); err != nil {
		t.Fatalf("B.TXT missing after REN: %v", err)
	}

	captureBuiltin(t, sh, "DEL B.TXT")
	if _, err := sh.FS.ReadFile(nil, "B.TXT"); err == nil {
		t.Fatalf("B.TXT still exists after DEL")
	}
}

func TestEchoSetAndExpansion(t *testing.T) {
	sh := newTestShell(t)
	captureBuiltin(t, sh, "SET NAME=WORLD")
	out := captureBuiltin(t, sh, "ECHO HELLO %NAME%")
	if strings.TrimSpace(out) != "HELLO WORLD" {
		t.Fatalf("ECHO output = %q, want %q", out, "HELLO WORLD")
	}
}

func TestRedirectionWritesFile(t *testing.T) {
	sh := newTestShell(t)
	if err := sh.Execute("ECHO HELLO > OUT.TXT"); err != nil {
		t.Fatalf("Execute redirect = %v", err)
	}
	data, err := sh.FS.ReadFile(nil, "OUT.TXT")
	if err != nil {
		t.Fatalf("ReadFile(OUT.TXT) = %v", err)
	}
	if !strings.Contains(string(data), "HELLO") {
		t.Fatalf("OUT.TXT = %q, want it to contain HELLO", data)
	}

	if err := sh.Execute("ECHO AGAIN >> OUT.TXT"); err != nil {
		t.Fatalf("Execute append = %v", err)
	}
	data, err = sh.FS.ReadFile(nil, "OUT.TXT")
	if err != nil {
		t.Fatalf("ReadFile(OUT.TXT) after append = %v", err)
	}
	if !strings.Contains(string(data), "HELLO") || !strings.Contains(string(data), "AGAIN") {
		t.Fatalf("OUT.TXT = %q, want both HELLO and AGAIN", data)
	}
}

func TestBatchGotoIfAndFor(t *testing.T) {
	sh := newTestShell(t)
	script := "" +
		"ECHO START\r\n" +
		"IF NOT EXIST MARKER.TXT GOTO MAKEIT\r\n" +
		"GOTO DONE\r\n" +
		":MAKEIT\r\n" +
		"ECHO MADE %1\r\n" +
		"FOR %X IN (A B C) DO ECHO ITEM %X\r\n" +
		":DONE\r\n" +
		"ECHO FINISH\r\n"

	var buf bytes.Buffer
	sh.Sess.PushSink(&buf)
	defer sh.Sess.PopSink()

	if err := sh.RunBatch(script, []string{"ONE"}); err != nil {
		t.Fatalf("RunBatch = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"START", "MADE ONE", "ITEM A", "ITEM B", "ITEM C", "FINISH"} {
		if !strings.Contains(out, want) {
			t.Fatalf("batch output %q missing %q", out, want)
		}
	}
}

func TestSplitArgsQuoted(t *testing.T) {
	fields := splitArgs(`FIND "two words" FILE.TXT`)
	want := []string{"FIND", "two words", "FILE.TXT"}
	if len(fields) != len(want) {
		t.Fatalf("splitArgs = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("splitArgs[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestResolvePath(t *testing.T) {
	sh := newTestShell(t)
	sh.cwd = []string{"SUBDIR"}

	dir, name := sh.resolvePath(`\ROOT.TXT`)
	if len(dir) != 0 || name != "ROOT.TXT" {
		t.Fatalf("resolvePath(absolute) = %v, %q, want nil, ROOT.TXT", dir, name)
	}

	dir, name = sh.resolvePath("REL.TXT")
	if len(dir) != 1 || dir[0] != "SUBDIR" || name != "REL.TXT" {
		t.Fatalf("resolvePath(relative) = %v, %q, want [SUBDIR], REL.TXT", dir, name)
	}

	dir, name = sh.resolvePath("..\\UP.TXT")
	if len(dir) != 0 || name != "UP.TXT" {
		t.Fatalf("resolvePath(..) = %v, %q, want nil, UP.TXT", dir, name)
	}
}

func TestPromptExpansion(t *testing.T) {
	sh := newTestShell(t)
	sh.prompt = "$P$G"
	if got := sh.Prompt(); got != `C:\>` {
		t.Fatalf("Prompt() = %q, want C:\\>", got)
	}
}
