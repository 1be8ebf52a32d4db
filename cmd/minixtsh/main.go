package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"

	"github.com/tsandoval/minixt86/internal/bios"
	"github.com/tsandoval/minixt86/internal/cpu"
	"github.com/tsandoval/minixt86/internal/fat12"
	"github.com/tsandoval/minixt86/internal/memory"
	"github.com/tsandoval/minixt86/internal/storage"
	"github.com/tsandoval/minixt86/version"
)

var (
	diskDir  string
	bootFile string
	logFile  string
)

func init() {
	flag.StringVar(&diskDir, "disk", "disk", "Directory backing the FAT12 volume")
	flag.StringVar(&bootFile, "boot", "", "Run this program immediately, then exit")
	flag.StringVar(&logFile, "log", "", "Write BIOS/DOS service log to this file instead of stderr")
}

func main() {
	flag.Parse()

	logger := slog.Default()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	store := storage.NewAferoStore(afero.NewOsFs(), diskDir)
	fs := fat12.New(store)
	if !fs.IsFormatted() {
		if err := fs.Format("MINIXT86"); err != nil {
			log.Fatal(err)
		}
	}

	p := cpu.New(memory.New(), nil)
	svc := bios.New(p, fs, logger)
	sh := NewShell(fs, p, svc)

	if bootFile != "" {
		runHeadless(sh, bootFile)
		return
	}

	runInteractive(sh)
}

// runHeadless drives one program to completion with no terminal at
// all, for scripted/CI use (`minixtsh -boot SETUP.BAT`).
func runHeadless(sh *Shell, name string) {
	if err := sh.runProgram(name, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(int(sh.lastExit))
}

func runInteractive(sh *Shell) {
	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	screen.DisableMouse()
	screen.Clear()

	front := newTcellFrontend(screen, sh.Svc)
	sh.frontend = front

	sh.Svc.Print(fmt.Sprintf("MINIXT86 DOS Version %s\r\n\r\n", version.Current.String()))
	front.redraw()

	for !sh.quit {
		sh.Svc.Print(sh.Prompt())
		front.redraw()

		line, eof := front.readLine()
		if eof {
			return
		}
		if err := sh.Execute(line); err != nil {
			sh.Svc.Print(err.Error() + "\r\n")
		}
		front.redraw()
	}
}
