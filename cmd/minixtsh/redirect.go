package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tsandoval/minixt86/internal/fat12"
)

// redirection is the parsed tail of a command line: at most one output
// target, matching `>`, `>>` and `| MORE`, the only pipe target this
// shell supports.
type redirection struct {
	kind redirKind
	path string
}

type redirKind int

const (
	redirNone redirKind = iota
	redirWrite
	redirAppend
	redirPipeMore
)

// fileSink buffers writes and flushes them to the FAT12 volume once
// popped, since the storage engine has no streaming-append primitive
// of its own (writeFile always replaces the whole entry).
type fileSink struct {
	fs     *fat12.FileSystem
	cwd    []string
	name   string
	append bool
	buf    bytes.Buffer
}

func (f *fileSink) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *fileSink) flush() error {
	data := f.buf.Bytes()
	if f.append {
		if existing, err := f.fs.ReadFile(f.cwd, f.name); err == nil {
			data = append(append([]byte{}, existing...), data...)
		}
	}
	return f.fs.WriteFile(f.cwd, f.name, data)
}

// splitRedirection pulls a trailing `> file`, `>> file` or `| MORE`
// off line and returns what remains for the word splitter.
func splitRedirection(line string) (rest string, r *redirection, err error) {
	if i := strings.LastIndex(line, "|"); i >= 0 {
		target := strings.TrimSpace(line[i+1:])
		if strings.ToUpper(target) != "MORE" {
			return "", nil, fmt.Errorf("unsupported pipe target %q", target)
		}
		return strings.TrimSpace(line[:i]), &redirection{kind: redirPipeMore}, nil
	}

	if i := strings.Index(line, ">>"); i >= 0 {
		path := strings.TrimSpace(line[i+2:])
		if path == "" {
			return "", nil, fmt.Errorf("missing redirection target")
		}
		return strings.TrimSpace(line[:i]), &redirection{kind: redirAppend, path: path}, nil
	}

	if i := strings.Index(line, ">"); i >= 0 {
		path := strings.TrimSpace(line[i+1:])
		if path == "" {
			return "", nil, fmt.Errorf("missing redirection target")
		}
		return strings.TrimSpace(line[:i]), &redirection{kind: redirWrite, path: path}, nil
	}

	return line, nil, nil
}

// push installs the sink r describes on top of sh's session, to be
// popped once the one command it applies to finishes.
func (r *redirection) push(sh *Shell) error {
	switch r.kind {
	case redirWrite, redirAppend:
		sh.Sess.PushSink(&fileSink{fs: sh.FS, cwd: sh.cwd, name: r.path, append: r.kind == redirAppend})
	case redirPipeMore:
		sh.Sess.PushSink(&bytes.Buffer{})
	}
	return nil
}

// pop restores the previous sink, flushing a file sink to disk or
// paginating a MORE buffer 24 lines at a time through the one that was
// on top before push.
func (r *redirection) pop(sh *Shell) {
	top := sh.Sess.Sink()
	sh.Sess.PopSink()

	switch r.kind {
	case redirWrite, redirAppend:
		if fs, ok := top.(*fileSink); ok {
			if err := fs.flush(); err != nil {
				fmt.Fprintln(sh.out(), err)
			}
		}
	case redirPipeMore:
		if buf, ok := top.(*bytes.Buffer); ok {
			more(sh, buf.String())
		}
	}
}

// more pages text 24 lines at a time, the classic DOS pager's one job.
func more(sh *Shell, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		fmt.Fprintln(sh.out(), line)
		if (i+1)%24 == 0 && i != len(lines)-1 {
			fmt.Fprint(sh.out(), "-- More --")
		}
	}
}
