/*
 * rvcore - Flat-file CSR persistence (spec 6.3).
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

package reader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/rvcore/internal/csr"
)

// Save emits one "num value" hex line per implemented CSR, the sequence of
// (number, value) pairs spec 6.3 describes a front end persisting.
func Save(f *csr.File, virt bool, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, num := range f.ImplementedNumbers() {
		v, ok := f.Peek(num, virt)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%03x %016x\n", uint16(num), v); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Load reloads CSRs previously written by Save via poke, skipping any
// number the current build does not implement.
func Load(f *csr.File, virt bool, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return fmt.Errorf("malformed line %d", line)
		}
		num, err := strconv.ParseUint(fields[0], 16, 16)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		value, err := strconv.ParseUint(fields[1], 16, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		f.Poke(csr.Number(num), value, virt)
	}
	return scanner.Err()
}
