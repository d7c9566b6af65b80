// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/frontend"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	rlog "github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var helpvar bool
var debugvar bool
var tracevar bool
var quietvar bool
var versionvar bool

var cfg = config.Default()

const usage = "gochip8 [-debug] [-frontend ebiten|terminal] [-rate hz] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&tracevar, "trace", false, "Logs every executed instruction")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.BoolVar(&versionvar, "version", false, "Displays version information")
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
}

func loadSymbols(dbg *debugger.Debugger, romfile string) {
	filename := filepath.Join(filepath.Dir(romfile), strings.ReplaceAll(
		filepath.Base(romfile), filepath.Ext(romfile), ".c8db",
	))

	file, err := os.Open(filename)

	if errors.Is(err, os.ErrNotExist) {
		return
	} else if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	dbg.SymTable = &symtable
}

func writeDump(mc *machine.Machine) error {
	file, err := os.Create(cfg.DumpPath)

	if err != nil {
		return err
	}

	if err := debugger.Dump(file, &mc.State); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func gochip8() int {
	if versionvar {
		fmt.Printf("gochip8 version: %s\n", buildinfo.Version(version, commit, date))
		return 0
	}

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		log.Println(err)
		return 1
	}

	rom, err := os.ReadFile(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	logger := config.CreateLogger(tracevar, quietvar)

	mc := machine.New(logger)
	mc.Quirks = cfg.Quirks()
	mc.Strict = cfg.Strict
	mc.Clock.SetRate(cfg.Rate)

	if cfg.Seed != 0 {
		mc.Random = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	if err := mc.LoadROM(rom); err != nil {
		log.Println(err)
		return 1
	}

	session := &frontend.Session{Machine: mc, Logger: logger}

	if cfg.DumpPath != "" {
		defer func() {
			if err := writeDump(mc); err != nil {
				logger.Error("Writing memory dump failed", rlog.Err(err))
			}
		}()
	}

	if debugvar {
		var dbg debugger.Debugger
		dbg.Break = true
		dbg.HandleBreak = handleBreak
		dbg.HandleRead = handleRead
		dbg.HandleWrite = handleWrite
		mc.Debugger = &dbg

		loadSymbols(&dbg, args[0])

		if dbg.SymTable != nil && dbg.SymTable.Source != "" {
			if file, err := os.Open(dbg.SymTable.Source); err == nil {
				dbg.Source = file
				defer file.Close()
			} else {
				log.Println("Error loading source file")
				log.Println(err)
			}
		}

		session.Beeper = frontend.Bell{Out: os.Stdout}
		return debugRun(&dbg, session)
	}

	ctx := app.Context()

	switch cfg.Frontend {
	case config.FRONTEND_EBITEN:
		if beeper, err := frontend.NewOtoBeeper(); err == nil {
			session.Beeper = beeper
			defer beeper.Close()
		} else {
			logger.Warn("Audio unavailable", rlog.Err(err))
		}

		err = frontend.NewGame(ctx, session, cfg).Run()

	case config.FRONTEND_TERMINAL:
		session.Beeper = frontend.Bell{Out: os.Stdout}
		err = frontend.NewTerminal(session, cfg, os.Stdin, os.Stdout).Run(ctx)
	}

	if err != nil {
		logger.Error("Frontend stopped", rlog.Err(err))
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}
