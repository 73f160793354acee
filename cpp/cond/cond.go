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

// Package cond tracks nested conditional compilation regions.
package cond

import (
	"errors"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

var (
	ErrUnmatchedDirective    = errors.New("conditional directive without matching #if")
	ErrElseAfterElse         = errors.New("#else after #else")
	ErrElifAfterElse         = errors.New("#elif after #else")
	ErrUnterminatedCondition = errors.New("unterminated conditional directive")
)

// Frame is one level of #if ... #endif nesting.
type Frame struct {
	// The current branch is selected.
	Taking bool
	// Some branch of this level was already selected, later ones are skipped.
	AnyTaken bool
	// Lines of the enclosing level are emitted.
	ParentActive bool
	// #else was seen, only #endif may follow.
	SawElse bool
	// Where the #if was found.
	Location lexer.Cursor
}

// Stack of conditional frames. The zero value is an empty stack, where every
// line is active.
type Stack struct {
	frames []Frame
}

// IsActive reports whether lines at the current position are emitted, i.e.
// every frame of the stack is taking its branch.
func (s *Stack) IsActive() bool {
	if len(s.frames) == 0 {
		return true
	}
	top := s.frames[len(s.frames)-1]
	return top.ParentActive && top.Taking
}

func (s *Stack) Depth() int { return len(s.frames) }

// PushIf opens a new level for #if, #ifdef or #ifndef. The condition is
// ignored when the enclosing level is inactive.
func (s *Stack) PushIf(condition bool, location lexer.Cursor) {
	parentActive := s.IsActive()
	taking := parentActive && condition
	s.frames = append(s.frames, Frame{Taking: taking, AnyTaken: taking, ParentActive: parentActive, Location: location})
}

// NeedsCondition reports whether the condition of an #elif found at the
// current position can change anything. If not, evaluating it can be skipped.
func (s *Stack) NeedsCondition() bool {
	if len(s.frames) == 0 {
		return false
	}
	top := s.frames[len(s.frames)-1]
	return top.ParentActive && !top.AnyTaken && !top.SawElse
}

// PushElif switches to the next branch of the current level. The branch is
// taken only if the condition holds and no previous branch was taken.
func (s *Stack) PushElif(condition bool) error {
	if len(s.frames) == 0 {
		return ErrUnmatchedDirective
	}
	top := &s.frames[len(s.frames)-1]
	if top.SawElse {
		top.Taking = false
		return ErrElifAfterElse
	}
	top.Taking = top.ParentActive && !top.AnyTaken && condition
	top.AnyTaken = top.AnyTaken || top.Taking
	return nil
}

// PushElse switches to the final branch of the current level, taken only if
// no previous branch was.
func (s *Stack) PushElse() error {
	if len(s.frames) == 0 {
		return ErrUnmatchedDirective
	}
	top := &s.frames[len(s.frames)-1]
	if top.SawElse {
		top.Taking = false
		return ErrElseAfterElse
	}
	top.SawElse = true
	top.Taking = top.ParentActive && !top.AnyTaken
	top.AnyTaken = true
	return nil
}

// PopEndif closes the current level.
func (s *Stack) PopEndif() error {
	if len(s.frames) == 0 {
		return ErrUnmatchedDirective
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Unclosed returns the frames still open, outermost first.
func (s *Stack) Unclosed() []Frame {
	return s.frames
}
