// Package lang is the front end for the enaml declarative UI language.
//
// It parses source files into a module tree of declarations, attribute
// bindings, and embedded expression code. The package wraps the lexer,
// grammar, and parser subpackages behind three entry points: [Parse],
// [ParseString], and [ParseReader].
//
// # Language
//
// A source file is a sequence of imports, raw statement blocks, and
// declarations:
//
//	from widgets import Window, Label
//
//	Main(Window):
//	    title = "hello"
//	    Label:
//	        text << "hello " + user.name
//
// A declaration derives a new component from a base and populates it with
// attribute declarations, attribute bindings, and child instantiations.
// Bindings relate an attribute to an expression through one of five
// operators:
//
//	=   default     evaluate once when the component is built
//	:=  delegate    bidirectional synchronization
//	<<  subscribe   re-evaluate when any dependency changes
//	>>  update      push the attribute value into the expression target
//	::  exec        run statements when the attribute changes
//
// Raw statement blocks carry supporting code verbatim:
//
//	:: python ::
//	from datetime import date
//	today = date.today()
//	:: end ::
//
// # Caching
//
// Parse tables are expensive to construct. They are memoized in-process
// by default, and [WithTableCache] persists them across processes. The
// parsed trees themselves are never cached; every call parses fresh and
// callers own any memoization of results.
package lang
