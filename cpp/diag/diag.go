// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag represents problems found while preprocessing as values. Nothing
// in the preprocessor stops at the first malformed construct: each one is
// reported as a Diagnostic and processing continues with the next line.
package diag

import (
	"errors"
	"fmt"
	"log"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

type Severity int

const (
	// The construct was ignored, e.g. an unknown directive or #warning.
	Warning Severity = iota
	// The construct was malformed and processed on a best-effort basis.
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single problem found in the source code.
type Diagnostic struct {
	Severity Severity
	Path     string
	Location lexer.Cursor
	Err      error
}

func (d Diagnostic) Error() string {
	path := d.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%v: %v: %v", path, d.Location, d.Severity, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Reporter receives diagnostics as they are found.
type Reporter interface {
	Report(Diagnostic)
}

// Collector is a Reporter keeping all reported diagnostics in order.
type Collector struct {
	// Echo every diagnostic to the standard logger.
	Debug bool

	diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	if c.Debug {
		log.Printf("%v", d)
	}
	c.diagnostics = append(c.diagnostics, d)
}

// All returns the diagnostics in the order they were reported.
func (c *Collector) All() []Diagnostic { return c.diagnostics }

func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err joins all diagnostics of Error severity, nil if there are none.
func (c *Collector) Err() error {
	var errs []error
	for _, d := range c.diagnostics {
		if d.Severity == Error {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Reporter dropping all diagnostics.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
