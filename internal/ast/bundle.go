package ast

import "jitscript/internal/source"

// Bundle is one decoded compilation unit: scripted modules plus the arenas
// their method bodies live in.
type Bundle struct {
	File    source.FileID
	Modules []ModuleDecl
	Exprs   *Exprs
	Stmts   *Stmts
}

func NewBundle(file source.FileID) *Bundle {
	return &Bundle{File: file, Exprs: NewExprs(0), Stmts: NewStmts(0)}
}

type ModuleDecl struct {
	Name    string
	Span    source.Span
	Fields  []FieldDecl
	Methods []MethodDecl
}

type FieldDecl struct {
	Name string
	Type string
	Span source.Span
}

type Param struct {
	Name string
	Type string
	Span source.Span
}

// MethodDecl: Params exclude the receiver, which is always named self.
type MethodDecl struct {
	Name    string
	Span    source.Span
	Params  []Param
	Returns string // type expression; empty means None
	Body    []StmtID
}
