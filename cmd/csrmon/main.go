/*
 * rvcore - csrmon: CSR debug/inspection front end.
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

// csrmon is the out-of-scope "debug-probe front end" reduced to the one
// capability the core's persisted-state contract demands of a front end: a
// REPL over peek/poke, built on a profile-selected CSR file.
package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rvcore/command/reader"
	"github.com/rcornwell/rvcore/config/profile"
	"github.com/rcornwell/rvcore/internal/csr"
	logger "github.com/rcornwell/rvcore/util/logger"
)

var Logger *slog.Logger

func main() {
	optProfile := getopt.StringLong("profile", 'p', "rvcore.profile", "Capability profile file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optLoad := getopt.StringLong("load", 'r', "", "Saved CSR state to reload at start")
	optVirt := getopt.BoolLong("virt", 'v', "Address the VS-mode alias bank")
	optDebug := getopt.BoolLong("debug", 'd', "Enable debug-range CSR access")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("csrmon started")

	if *optProfile == "" {
		Logger.Error("please specify a capability profile")
		os.Exit(1)
	}
	if _, err := os.Stat(*optProfile); os.IsNotExist(err) {
		Logger.Error("profile file not found", "path", *optProfile)
		os.Exit(1)
	}

	prof, err := profile.Load(*optProfile)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	f := csr.NewFile(prof.Caps, Logger)
	f.SetDebugMode(*optDebug)
	f.Reset()

	if *optLoad != "" {
		if err := reader.Load(f, *optVirt, *optLoad); err != nil {
			Logger.Error("loading saved state", "error", err.Error())
			os.Exit(1)
		}
	}

	reader.ConsoleReader(f, *optVirt)

	Logger.Info("csrmon exiting")
}
