/*
 * rvcore - Command reader.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package reader is the csrmon REPL: a peterh/liner-backed command line that
// drives a CSR file's peek/poke surface plus a simple flat-file persistence
// format (spec 6.3: "a sequence of (number, value) pairs").
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/rvcore/internal/csr"
	"github.com/rcornwell/rvcore/util/hex"
)

var commands = []string{"peek", "poke", "dump", "save", "load", "help", "quit"}

// ConsoleReader drives the REPL against f until the user quits or the
// prompt is aborted (Ctrl-D/Ctrl-C). virt selects which alias bank peek/poke
// address.
func ConsoleReader(f *csr.File, virt bool) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, partial) {
				out = append(out, c)
			}
		}
		return out
	})

	for {
		command, err := line.Prompt("csrmon> ")
		if err == nil {
			line.AppendHistory(command)
			quit, cmdErr := processCommand(command, f, virt)
			if cmdErr != nil {
				fmt.Println("Error: " + cmdErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}

func processCommand(command string, f *csr.File, virt bool) (quit bool, err error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Println("peek <num>            read a CSR by number (hex)")
		fmt.Println("poke <num> <value>    write a CSR bypassing privilege checks")
		fmt.Println("dump                  list every implemented CSR")
		fmt.Println("save <file>           persist implemented CSRs to a file")
		fmt.Println("load <file>           reload CSRs previously saved")
		fmt.Println("quit                  exit")
		return false, nil

	case "peek":
		if len(fields) != 2 {
			return false, errors.New("usage: peek <num>")
		}
		num, err := parseNumber(fields[1])
		if err != nil {
			return false, err
		}
		v, ok := f.Peek(num, virt)
		if !ok {
			return false, fmt.Errorf("csr %03x not implemented", uint16(num))
		}
		fmt.Printf("%s (%03x) = %s\n", f.Name(num), uint16(num), formatValue(v))
		return false, nil

	case "poke":
		if len(fields) != 3 {
			return false, errors.New("usage: poke <num> <value>")
		}
		num, err := parseNumber(fields[1])
		if err != nil {
			return false, err
		}
		value, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(fields[2]), "0x"), 16, 64)
		if err != nil {
			return false, fmt.Errorf("invalid hex value %q", fields[2])
		}
		if !f.Poke(num, value, virt) {
			return false, fmt.Errorf("csr %03x not implemented", uint16(num))
		}
		return false, nil

	case "dump":
		for _, num := range f.ImplementedNumbers() {
			v, _ := f.Peek(num, virt)
			fmt.Printf("%-12s %03x = %s\n", f.Name(num), uint16(num), formatValue(v))
		}
		return false, nil

	case "save":
		if len(fields) != 2 {
			return false, errors.New("usage: save <file>")
		}
		return false, Save(f, virt, fields[1])

	case "load":
		if len(fields) != 2 {
			return false, errors.New("usage: load <file>")
		}
		return false, Load(f, virt, fields[1])
	}

	return false, fmt.Errorf("unknown command %q", fields[0])
}

func parseNumber(s string) (csr.Number, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid hex number %q", s)
	}
	return csr.Number(v), nil
}

func formatValue(v uint64) string {
	var sb strings.Builder
	hex.FormatWord(&sb, []uint32{uint32(v >> 32), uint32(v)})
	return strings.TrimSpace(sb.String())
}
