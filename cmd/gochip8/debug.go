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
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/frontend"
	"github.com/lassandro/gochip8/pkg/machine"
)

var lastcmd []string
var shouldexit bool
var heldkeys machine.Keypad
var session *frontend.Session
var resumed time.Time
var scanner = bufio.NewScanner(os.Stdin)

func parseAddr(dbg *debugger.Debugger, arg string) (uint16, error) {
	if addr, ok := dbg.LabelAddress(arg); ok {
		return addr, nil
	}

	addr, err := encoding.DecodeLiteral(arg)

	if err != nil {
		return 0, err
	}

	if addr >= machine.MEMORY_SIZE {
		return 0, fmt.Errorf("address %#04x outside memory", addr)
	}

	return addr, nil
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [V#|PC|I|DT|ST] [value]"

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch {
	case name == "PC":
		mc.Program = value & 0xFFF
	case name == "I":
		mc.Index = value
	case name == "DT":
		mc.Delay = uint8(value)
	case name == "ST":
		mc.Sound = uint8(value)
	case len(name) == 2 && name[0] == 'V':
		reg, err := strconv.ParseUint(name[1:], 16, 4)

		if err != nil {
			log.Println("Invalid register")
			return
		}

		mc.Registers[reg] = uint8(value)
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#02x\n", name, value)
}

// Parses the optional [addr] [count] pair shared by several commands. A
// lone decimal number is read as a count from the program counter.
func parseRange(
	dbg *debugger.Debugger, mc *machine.MachineState, args []string, count uint16,
) (uint16, uint16, bool) {
	addr := mc.Program

	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		if _, ok := dbg.LabelAddress(args[0]); ok || encoding.IsHex(args[0]) || len(args) > 1 {
			a, err := parseAddr(dbg, args[0])

			if err != nil {
				log.Println(err)
				return 0, 0, false
			}

			addr = a
		} else {
			value, err := strconv.ParseUint(args[0], 10, 16)

			if err != nil {
				log.Println(err)
				return 0, 0, false
			}

			count = uint16(value)
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return 0, 0, false
		}

		count = uint16(value)
	}

	return addr, count, true
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	addr, count, ok := parseRange(dbg, mc, args, 3)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintSource(addr, count)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|label] [#]"

	addr, count, ok := parseRange(dbg, mc, args, 1)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintMem(mc, addr, count)
}

func debugDisassemble(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "dis [0x###|label] [#]"

	addr, count, ok := parseRange(dbg, mc, args, 8)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintDisassembly(mc, addr, int(count))
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if value > 0xFF {
		log.Println("Value exceeds one byte")
		return
	}

	mc.Memory[addr] = uint8(value)
	dbg.PrintMem(mc, addr, 1)
}

func debugKeys(dbg *debugger.Debugger, args []string) {
	const usage = "keys [clear|0-F ...]"

	if len(args) == 1 && args[0] == "clear" {
		heldkeys = 0
	} else {
		var keys machine.Keypad

		for _, arg := range args {
			key, err := strconv.ParseUint(arg, 16, 4)

			if err != nil {
				log.Println(usage)
				return
			}

			keys = keys.Press(uint8(key))
		}

		if len(args) > 0 {
			heldkeys = keys
		}
	}

	dbg.PrintKeys(heldkeys)
}

func debugDump(mc *machine.MachineState, args []string) {
	const usage = "dump [file]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	file, err := os.Create(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	defer file.Close()

	if err := debugger.Dump(file, mc); err != nil {
		log.Println(err)
		return
	}

	fmt.Printf("Memory written to %s\n", args[0])
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	if shouldexit {
		return
	}

	defer func() { resumed = time.Now() }()

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "regs", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "src", "source":
			debugSource(dbg, &mc.State, args)

		case "l", "label", "labels":
			dbg.PrintLabels()

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "d", "dis", "disassemble":
			debugDisassemble(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "screen":
			dbg.PrintScreen(&mc.State)

		case "k", "keys":
			debugKeys(dbg, args)

		case "dump":
			debugDump(&mc.State, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "s", "n", "step", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			session.Reset()
			fmt.Printf("\033[1mPC:\033[0m %#04x\n", mc.State.Program)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		dbg.PrintSource(mc.State.Program, 8)
	}

	dbg.PrintDisassembly(&mc.State, mc.State.Program, 1)
	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

// debugRun drives the machine in real time between REPL sessions. Time spent
// at the prompt is not replayed.
func debugRun(dbg *debugger.Debugger, s *frontend.Session) int {
	session = s
	mc := s.Machine

	c := make(chan os.Signal, 1)
	defer close(c)

	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			fmt.Println()
			dbg.Break = true
		}
	}()

	defer s.Close()

	dbg.PrintDisassembly(&mc.State, mc.State.Program, 1)
	debugREPL(dbg, mc)

	ticker := time.NewTicker(time.Second / frontend.FRAME_RATE)
	defer ticker.Stop()

	last := time.Now()

	for !shouldexit {
		now := <-ticker.C

		if resumed.After(last) {
			last = resumed
		}

		delta := now.Sub(last)
		if delta < 0 {
			delta = 0
		}

		if err := s.Advance(delta, heldkeys); err != nil {
			log.Println(err)
			return 1
		}

		last = now

		if s.Faulted() && !shouldexit {
			fmt.Println()
			fmt.Printf("Machine faulted: %v\n", mc.Fault())
			dbg.PrintRegisters(&mc.State)
			debugREPL(dbg, mc)
		}
	}

	return 0
}
