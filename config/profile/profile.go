/*
 * rvcore - Profile loader: capability directives instead of device models.
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

// Package profile loads a line-oriented ".profile" file selecting which
// optional CSR extensions and vector-register-file shape a core is built
// with, in the shape of the teacher's device-config grammar re-pointed at
// capability directives:
//
//	xlen 64
//	hypervisor on
//	vector on bytes_per_reg=128 min_elem_bytes=1 max_elem_bytes=8
//	aia on
//	sscofpmf on
//	smstateen on
//	sdtrig on
//	rvf on
package profile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/rvcore/internal/csr"
	"github.com/rcornwell/rvcore/internal/vector"
)

// Profile is the parsed result of a profile file: the CSR capability set
// plus the vector register file shape, ready to hand to csr.NewFile and
// (*vector.File).Configure.
type Profile struct {
	Caps   csr.Capabilities
	Vector vector.Config
}

// directive handlers take the args that followed the directive name and
// mutate the profile being built, or return a ConfigError-shaped error.
type handler func(p *Profile, args []string) error

var directives = map[string]handler{
	"xlen":       xlenDirective,
	"hypervisor": boolDirective(func(p *Profile, v bool) { p.Caps.Hypervisor = v }),
	"supervisor": boolDirective(func(p *Profile, v bool) { p.Caps.Supervisor = v }),
	"aia":        boolDirective(func(p *Profile, v bool) { p.Caps.AIA = v }),
	"sscofpmf":   boolDirective(func(p *Profile, v bool) { p.Caps.Sscofpmf = v }),
	"smstateen":  boolDirective(func(p *Profile, v bool) { p.Caps.Smstateen = v }),
	"sdtrig":     boolDirective(func(p *Profile, v bool) { p.Caps.Sdtrig = v }),
	"rvf":        boolDirective(func(p *Profile, v bool) { p.Caps.Rvf = v }),
	"vector":     vectorDirective,
}

func xlenDirective(p *Profile, args []string) error {
	if len(args) == 0 {
		return errors.New("xlen requires a value")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || (n != 32 && n != 64) {
		return fmt.Errorf("xlen must be 32 or 64, got %q", args[0])
	}
	p.Caps.XLEN = n
	return nil
}

func boolDirective(set func(*Profile, bool)) handler {
	return func(p *Profile, args []string) error {
		if len(args) == 0 {
			return errors.New("directive requires on/off")
		}
		switch strings.ToLower(args[0]) {
		case "on":
			set(p, true)
		case "off":
			set(p, false)
		default:
			return fmt.Errorf("expected on/off, got %q", args[0])
		}
		return nil
	}
}

func vectorDirective(p *Profile, args []string) error {
	if len(args) == 0 {
		return errors.New("vector requires on/off")
	}
	on := strings.EqualFold(args[0], "on")
	if !on && !strings.EqualFold(args[0], "off") {
		return fmt.Errorf("expected on/off, got %q", args[0])
	}
	p.Caps.Vector = on

	cfg := vector.Config{BytesPerReg: 32, MinElemBytes: 1, MaxElemBytes: 8}
	for _, kv := range args[1:] {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("malformed vector option %q", kv)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("vector option %s: %w", name, err)
		}
		switch name {
		case "bytes_per_reg":
			cfg.BytesPerReg = n
		case "min_elem_bytes":
			cfg.MinElemBytes = n
		case "max_elem_bytes":
			cfg.MaxElemBytes = n
		default:
			return fmt.Errorf("unknown vector option %q", name)
		}
	}
	p.Vector = cfg
	return nil
}

// Load reads and parses a profile file, applying directives in file order.
func Load(name string) (*Profile, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads directives from r; exported separately from Load so the
// debug CLI can feed it an in-memory reader in tests.
func Parse(r io.Reader) (*Profile, error) {
	p := &Profile{Caps: csr.Capabilities{XLEN: 64}, Vector: vector.Config{BytesPerReg: 32, MinElemBytes: 1, MaxElemBytes: 8}}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		fn, ok := directives[name]
		if !ok {
			return nil, fmt.Errorf("no directive %q registered, line %d", fields[0], lineNumber)
		}
		if err := fn(p, fields[1:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
