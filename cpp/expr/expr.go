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

// Package expr evaluates the integer constant expressions of #if and #elif
// lines. The line is parsed into an expression tree first, so that operands
// skipped by '&&', '||' and '?:' are never evaluated and can't report errors.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDivisionByZero    = errors.New("division by zero in preprocessor expression")
	ErrSyntax            = errors.New("invalid preprocessor expression")
	ErrMissingExpression = errors.New("missing preprocessor expression")
	ErrInvalidLiteral    = errors.New("invalid literal in preprocessor expression")
)

// Context of an evaluation.
type Context struct {
	// Reports whether the macro is defined. Used for 'defined' produced by
	// macro expansion, everything else is resolved before evaluation. Nil
	// means no macro is defined.
	IsDefined func(name string) bool
	// Problems found while evaluating. They never stop the evaluation.
	Errors []error
}

func (ctx *Context) isDefined(name string) bool {
	return ctx.IsDefined != nil && ctx.IsDefined(name)
}

type (
	// Expr is a node of a parsed #if expression.
	Expr interface {
		Eval(ctx *Context) int64
		String() string
	}

	// Constant is an integer or character literal, or an identifier known to
	// have a value (true, false).
	Constant int64

	// Ident is an identifier left after macro expansion. It evaluates to 0.
	Ident string

	// Defined is the defined(X) operator.
	Defined struct {
		Name Ident
	}

	// Apply is a function-like use of an identifier that is not a macro, e.g.
	// __has_feature(x). It evaluates to 0. Arguments are kept as written, they
	// need not be valid expressions (__has_cpp_attribute(gnu::cold)).
	Apply struct {
		Name Ident
		Args []string
	}

	Unary struct {
		Op string
		X  Expr
	}

	Binary struct {
		Op   string
		L, R Expr
	}

	// Conditional is the ternary operator: Cond ? Then : Else.
	Conditional struct {
		Cond, Then, Else Expr
	}
)

func (expr Constant) String() string { return fmt.Sprintf("%d", int64(expr)) }
func (expr Ident) String() string    { return string(expr) }
func (expr Defined) String() string  { return fmt.Sprintf("defined(%s)", expr.Name) }
func (expr Unary) String() string    { return expr.Op + expr.X.String() }
func (expr Binary) String() string {
	return "(" + expr.L.String() + " " + expr.Op + " " + expr.R.String() + ")"
}
func (expr Conditional) String() string {
	return "(" + expr.Cond.String() + " ? " + expr.Then.String() + " : " + expr.Else.String() + ")"
}
func (expr Apply) String() string {
	return string(expr.Name) + "(" + strings.Join(expr.Args, ", ") + ")"
}

func (expr Constant) Eval(*Context) int64 { return int64(expr) }
func (expr Ident) Eval(*Context) int64    { return 0 }
func (expr Apply) Eval(*Context) int64    { return 0 }
func (expr Defined) Eval(ctx *Context) int64 {
	return boolValue(ctx.isDefined(string(expr.Name)))
}

func (expr Unary) Eval(ctx *Context) int64 {
	x := expr.X.Eval(ctx)
	switch expr.Op {
	case "!":
		return boolValue(x == 0)
	case "~":
		return ^x
	case "-":
		return -x
	case "+":
		return x
	default:
		panic(fmt.Sprintf("unknown unary operator %q", expr.Op))
	}
}

func (expr Binary) Eval(ctx *Context) int64 {
	// short-circuit operators evaluate the right operand only if needed
	switch expr.Op {
	case "&&":
		return boolValue(expr.L.Eval(ctx) != 0 && expr.R.Eval(ctx) != 0)
	case "||":
		return boolValue(expr.L.Eval(ctx) != 0 || expr.R.Eval(ctx) != 0)
	}

	l, r := expr.L.Eval(ctx), expr.R.Eval(ctx)
	switch expr.Op {
	case "*":
		// int64 multiplication wraps on overflow
		return l * r
	case "/", "%":
		if r == 0 {
			ctx.Errors = append(ctx.Errors, ErrDivisionByZero)
			return 0
		}
		if expr.Op == "/" {
			return l / r
		}
		return l % r
	case "+":
		return l + r
	case "-":
		return l - r
	case "<<", ">>":
		if r < 0 {
			return 0
		}
		if expr.Op == "<<" {
			return l << uint64(r)
		}
		return l >> uint64(r)
	case "<":
		return boolValue(l < r)
	case "<=":
		return boolValue(l <= r)
	case ">":
		return boolValue(l > r)
	case ">=":
		return boolValue(l >= r)
	case "==":
		return boolValue(l == r)
	case "!=":
		return boolValue(l != r)
	case "&":
		return l & r
	case "^":
		return l ^ r
	case "|":
		return l | r
	default:
		panic(fmt.Sprintf("unknown binary operator %q", expr.Op))
	}
}

func (expr Conditional) Eval(ctx *Context) int64 {
	if expr.Cond.Eval(ctx) != 0 {
		return expr.Then.Eval(ctx)
	}
	return expr.Else.Eval(ctx)
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
