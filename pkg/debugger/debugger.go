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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lassandro/gochip8/pkg/disasm"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports false when addr already has a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

// AddWatchpoint reports false when an identical watchpoint exists.
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

// LabelAddress looks a label up in the symbol table.
func (dbg *Debugger) LabelAddress(label string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, name := range dbg.SymTable.Labels {
		if name == label {
			return addr, true
		}
	}

	return 0, false
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	w := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(w, "No instruction found at %#04x\n", addr)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(w, err)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	w := dbg.out()

	for i := 0; i < int(count) && int(addr)+i < machine.MEMORY_SIZE; i++ {
		at := addr + uint16(i)

		if i == 0 {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", at)
		} else if i%8 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", at)
		}

		result := mc.Memory[at]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%02x\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%02x ", result)
		}
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	w := dbg.out()

	for i, register := range mc.Registers {
		fmt.Fprintf(w, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i%4 == 3 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(
		w,
		"\033[1mPC:\033[0m %#04x\t\033[1mI:\033[0m %#04x\t"+
			"\033[1mDT:\033[0m %d\t\033[1mST:\033[0m %d\n",
		mc.Program,
		mc.Index,
		mc.Delay,
		mc.Sound,
	)

	fmt.Fprintf(w, "\033[1mSP:\033[0m %d\t", mc.Stack.Len())
	for i := 0; i < mc.Stack.Len(); i++ {
		fmt.Fprintf(w, "%#04x ", mc.Stack.Addresses[i])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1mStatus:\033[0m %s\n", mc.Status)
}

func (dbg *Debugger) PrintDisassembly(mc *machine.MachineState, addr uint16, count int) {
	w := dbg.out()

	for _, line := range disasm.Listing(mc.Memory[:], addr, count) {
		if line.Address == mc.Program {
			fmt.Fprintf(w, "\033[1m%s\033[0m\n", line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}

func (dbg *Debugger) PrintScreen(mc *machine.MachineState) {
	w := dbg.out()

	for y := 0; y < machine.SCREEN_HEIGHT; y++ {
		row := make([]byte, machine.SCREEN_WIDTH)

		for x := range row {
			if mc.Display.Pixel(x, y) {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}

		fmt.Fprintln(w, string(row))
	}
}

func (dbg *Debugger) PrintKeys(keys machine.Keypad) {
	w := dbg.out()

	held := make([]string, 0, machine.KEY_COUNT)
	for key := uint8(0); key < machine.KEY_COUNT; key++ {
		if keys.Down(key) {
			held = append(held, fmt.Sprintf("%X", key))
		}
	}

	fmt.Fprintf(w, "\033[1mKeys:\033[0m %v\n", held)
}

func (dbg *Debugger) PrintLabels() {
	w := dbg.out()

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Fprintf(
			w, "\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

// Dump writes the raw memory image with no header.
func Dump(w io.Writer, mc *machine.MachineState) error {
	_, err := w.Write(mc.Memory.Dump())
	return err
}
