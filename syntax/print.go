package syntax

import (
	"fmt"
	"io"
	"strings"
)

// This file renders an AST back to source text, used by the round-trip
// property test in spec.md §8 ("pretty-printing the AST of e and
// re-parsing produces a structurally equal AST"). Its recursive,
// buffer-accumulating shape follows the same pattern as
// akashmaji946-go-mix's PrintingVisitor and mcgru-funxy's
// internal/prettyprinter/code_printer.go; no general-purpose templating
// library fits recursive, precedence-aware expression printing, so this is
// necessarily hand-written (see DESIGN.md).

type printer struct {
	sb     strings.Builder
	indent int
}

// Fprint writes the source-text form of n to w.
func Fprint(w io.Writer, n Node) error {
	p := &printer{}
	p.printNode(n)
	_, err := io.WriteString(w, p.sb.String())
	return err
}

// String returns the source-text form of n.
func String(n Node) string {
	p := &printer{}
	p.printNode(n)
	return p.sb.String()
}

func (p *printer) writeIndent() {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
}

func (p *printer) printNode(n Node) {
	switch n := n.(type) {
	case *File:
		for _, s := range n.Stmts {
			p.printStmt(s)
		}
	case Stmt:
		p.printStmt(n)
	case Expr:
		p.printExpr(n)
	}
}

func (p *printer) printBlock(stmts []Stmt) {
	p.sb.WriteString(":\n")
	p.indent++
	if len(stmts) == 0 {
		p.writeIndent()
		p.sb.WriteString("pass\n")
	}
	for _, s := range stmts {
		p.printStmt(s)
	}
	p.indent--
}

func (p *printer) printStmt(s Stmt) {
	p.writeIndent()
	switch s := s.(type) {
	case *PassStmt:
		p.sb.WriteString("pass\n")
	case *BranchStmt:
		p.sb.WriteString(s.Token.String() + "\n")
	case *DeleteStmt:
		p.sb.WriteString("del ")
		p.printExprList(s.Targets)
		p.sb.WriteString("\n")
	case *ExprStmt:
		p.printExpr(s.X)
		p.sb.WriteString("\n")
	case *AssignStmt:
		for _, t := range s.Targets {
			p.printExpr(t)
			p.sb.WriteString(" = ")
		}
		p.printExpr(s.Value)
		p.sb.WriteString("\n")
	case *AugAssignStmt:
		p.printExpr(s.Target)
		fmt.Fprintf(&p.sb, " %s ", s.Op)
		p.printExpr(s.Value)
		p.sb.WriteString("\n")
	case *ReturnStmt:
		p.sb.WriteString("return")
		if s.Result != nil {
			p.sb.WriteString(" ")
			p.printExpr(s.Result)
		}
		p.sb.WriteString("\n")
	case *RaiseStmt:
		p.sb.WriteString("raise")
		if s.Exc != nil {
			p.sb.WriteString(" ")
			p.printExpr(s.Exc)
		}
		if s.Cause != nil {
			p.sb.WriteString(" from ")
			p.printExpr(s.Cause)
		}
		p.sb.WriteString("\n")
	case *GlobalStmt:
		p.sb.WriteString("global ")
		p.printIdentList(s.Names)
		p.sb.WriteString("\n")
	case *NonlocalStmt:
		p.sb.WriteString("nonlocal ")
		p.printIdentList(s.Names)
		p.sb.WriteString("\n")
	case *AssertStmt:
		p.sb.WriteString("assert ")
		p.printExpr(s.Test)
		if s.Msg != nil {
			p.sb.WriteString(", ")
			p.printExpr(s.Msg)
		}
		p.sb.WriteString("\n")
	case *ImportStmt:
		p.printImport(s)
	case *IfStmt:
		p.sb.WriteString("if ")
		p.printExpr(s.Test)
		p.printBlock(s.Body)
		p.printElse(s.OrElse)
	case *WhileStmt:
		p.sb.WriteString("while ")
		p.printExpr(s.Test)
		p.printBlock(s.Body)
		if len(s.OrElse) > 0 {
			p.writeIndent()
			p.sb.WriteString("else")
			p.printBlock(s.OrElse)
		}
	case *ForStmt:
		p.sb.WriteString("for ")
		p.printExpr(s.Target)
		p.sb.WriteString(" in ")
		p.printExpr(s.Iter)
		p.printBlock(s.Body)
		if len(s.OrElse) > 0 {
			p.writeIndent()
			p.sb.WriteString("else")
			p.printBlock(s.OrElse)
		}
	case *TryStmt:
		p.sb.WriteString("try")
		p.printBlock(s.Body)
		for _, h := range s.Handlers {
			p.writeIndent()
			p.sb.WriteString("except")
			if h.Type != nil {
				p.sb.WriteString(" ")
				p.printExpr(h.Type)
			}
			if h.Name != nil {
				p.sb.WriteString(" as ")
				p.sb.WriteString(h.Name.Name)
			}
			p.printBlock(h.Body)
		}
		if len(s.OrElse) > 0 {
			p.writeIndent()
			p.sb.WriteString("else")
			p.printBlock(s.OrElse)
		}
		if len(s.FinalBody) > 0 {
			p.writeIndent()
			p.sb.WriteString("finally")
			p.printBlock(s.FinalBody)
		}
	case *WithStmt:
		p.sb.WriteString("with ")
		for i, it := range s.Items {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.printExpr(it.Ctx)
			if it.Target != nil {
				p.sb.WriteString(" as ")
				p.printExpr(it.Target)
			}
		}
		p.printBlock(s.Body)
	case *FunctionDef:
		// the statement's indent is already written; each decorator line
		// ends by indenting the line that follows it
		for _, d := range s.Decorators {
			p.sb.WriteString("@")
			p.printExpr(d)
			p.sb.WriteString("\n")
			p.writeIndent()
		}
		p.sb.WriteString("def " + s.Name.Name + "(")
		p.printParameters(s.Function.Params, true)
		p.sb.WriteString(")")
		if s.Returns != nil {
			p.sb.WriteString(" -> ")
			p.printExpr(s.Returns)
		}
		p.printBlock(s.Function.Body)
	case *ClassDef:
		for _, d := range s.Decorators {
			p.sb.WriteString("@")
			p.printExpr(d)
			p.sb.WriteString("\n")
			p.writeIndent()
		}
		p.sb.WriteString("class " + s.Name.Name)
		if len(s.Bases) > 0 || len(s.Keywords) > 0 {
			p.sb.WriteString("(")
			first := true
			for _, b := range s.Bases {
				if !first {
					p.sb.WriteString(", ")
				}
				p.printExpr(b)
				first = false
			}
			for _, kw := range s.Keywords {
				if !first {
					p.sb.WriteString(", ")
				}
				if kw.Name == nil {
					p.sb.WriteString("**")
				} else {
					p.sb.WriteString(kw.Name.Name + "=")
				}
				p.printExpr(kw.Value)
				first = false
			}
			p.sb.WriteString(")")
		}
		p.printBlock(s.Body)
	default:
		p.sb.WriteString(fmt.Sprintf("<?stmt %T>\n", s))
	}
}

func (p *printer) printElse(orelse []Stmt) {
	if len(orelse) == 0 {
		return
	}
	if len(orelse) == 1 {
		if nested, ok := orelse[0].(*IfStmt); ok {
			p.writeIndent()
			p.sb.WriteString("elif ")
			p.printExpr(nested.Test)
			p.printBlock(nested.Body)
			p.printElse(nested.OrElse)
			return
		}
	}
	p.writeIndent()
	p.sb.WriteString("else")
	p.printBlock(orelse)
}

func (p *printer) printImport(s *ImportStmt) {
	if len(s.Parts) == 0 {
		return
	}
	if s.Parts[0].Symbol == "" {
		p.sb.WriteString("import ")
		for i, part := range s.Parts {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(part.Module)
			if part.Alias != "" {
				p.sb.WriteString(" as " + part.Alias)
			}
		}
		p.sb.WriteString("\n")
		return
	}
	p.sb.WriteString("from " + s.Parts[0].Module + " import ")
	for i, part := range s.Parts {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(part.Symbol)
		if part.Alias != "" {
			p.sb.WriteString(" as " + part.Alias)
		}
	}
	p.sb.WriteString("\n")
}

func (p *printer) printIdentList(ids []*Ident) {
	for i, id := range ids {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(id.Name)
	}
}

func (p *printer) printExprList(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.printExpr(e)
	}
}

func (p *printer) printParameters(params *Parameters, typed bool) {
	if params == nil {
		return
	}
	first := true
	comma := func() {
		if !first {
			p.sb.WriteString(", ")
		}
		first = false
	}
	nd := len(params.Args) - len(params.Defaults)
	for i, a := range params.Args {
		comma()
		p.printParam(a, typed)
		if i >= nd {
			p.sb.WriteString("=")
			p.printExpr(params.Defaults[i-nd])
		}
	}
	switch params.Vararg.Kind {
	case VarargNamed:
		comma()
		p.sb.WriteString("*")
		p.printParam(params.Vararg.Param, typed)
	case VarargAnonymous:
		comma()
		p.sb.WriteString("*")
	}
	for i, a := range params.KwOnlyArgs {
		comma()
		p.printParam(a, typed)
		if params.KwDefaults[i] != nil {
			p.sb.WriteString("=")
			p.printExpr(params.KwDefaults[i])
		}
	}
	if params.Kwarg != nil {
		comma()
		p.sb.WriteString("**")
		p.printParam(params.Kwarg, typed)
	}
}

func (p *printer) printParam(param *Parameter, typed bool) {
	p.sb.WriteString(param.Name.Name)
	if typed && param.Annotation != nil {
		p.sb.WriteString(": ")
		p.printExpr(param.Annotation)
	}
}

func (p *printer) printExpr(e Expr) {
	switch e := e.(type) {
	case *Ident:
		p.sb.WriteString(e.Name)
	case *Literal:
		p.sb.WriteString(e.Raw)
	case *StrExpr:
		p.sb.WriteString(e.Raw)
	case *BytesExpr:
		fmt.Fprintf(&p.sb, "b%q", string(e.Value))
	case *TupleExpr:
		p.sb.WriteString("(")
		p.printExprList(e.List)
		if len(e.List) == 1 {
			p.sb.WriteString(",")
		}
		p.sb.WriteString(")")
	case *ListExpr:
		p.sb.WriteString("[")
		p.printExprList(e.List)
		p.sb.WriteString("]")
	case *SetExpr:
		p.sb.WriteString("{")
		p.printExprList(e.List)
		p.sb.WriteString("}")
	case *DictExpr:
		p.sb.WriteString("{")
		for i, entry := range e.List {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.printExpr(entry.Key)
			p.sb.WriteString(": ")
			p.printExpr(entry.Value)
		}
		p.sb.WriteString("}")
	case *BoolOp:
		p.sb.WriteString("(")
		for i, v := range e.Values {
			if i > 0 {
				fmt.Fprintf(&p.sb, " %s ", e.Op)
			}
			p.printExpr(v)
		}
		p.sb.WriteString(")")
	case *BinaryExpr:
		p.sb.WriteString("(")
		p.printExpr(e.X)
		fmt.Fprintf(&p.sb, " %s ", e.Op)
		p.printExpr(e.Y)
		p.sb.WriteString(")")
	case *UnaryExpr:
		p.sb.WriteString("(")
		if e.Op == NOT {
			p.sb.WriteString("not ")
		} else {
			p.sb.WriteString(e.Op.String())
		}
		p.printExpr(e.X)
		p.sb.WriteString(")")
	case *CompareExpr:
		p.sb.WriteString("(")
		p.printExpr(e.Vals[0])
		for i, op := range e.Ops {
			fmt.Fprintf(&p.sb, " %s ", op)
			p.printExpr(e.Vals[i+1])
		}
		p.sb.WriteString(")")
	case *CallExpr:
		p.printExpr(e.Fn)
		p.sb.WriteString("(")
		first := true
		for _, a := range e.Args {
			if !first {
				p.sb.WriteString(", ")
			}
			p.printExpr(a)
			first = false
		}
		for _, kw := range e.Keywords {
			if !first {
				p.sb.WriteString(", ")
			}
			if kw.Name == nil {
				p.sb.WriteString("**")
			} else {
				p.sb.WriteString(kw.Name.Name + "=")
			}
			p.printExpr(kw.Value)
			first = false
		}
		p.sb.WriteString(")")
	case *StarredExpr:
		p.sb.WriteString("*")
		p.printExpr(e.X)
	case *DotExpr:
		p.printExpr(e.X)
		p.sb.WriteString("." + e.Name.Name)
	case *IndexExpr:
		p.printExpr(e.X)
		p.sb.WriteString("[")
		// A multi-dim subscript's Index is a *TupleExpr built without source
		// parens (§4.4); printing it through the generic TupleExpr case would
		// wrap it in "(...)", which does not re-parse as a subscript list
		// (a bare ":" is not a valid parenthesized-expression start). Print
		// its elements directly instead.
		if tup, ok := e.Index.(*TupleExpr); ok && tup.Lparen == (Position{}) {
			p.printExprList(tup.List)
			if len(tup.List) == 1 {
				p.sb.WriteString(",")
			}
		} else {
			p.printExpr(e.Index)
		}
		p.sb.WriteString("]")
	case *SliceExpr:
		printSliceComponent(p, e.Lo)
		p.sb.WriteString(":")
		printSliceComponent(p, e.Hi)
		p.sb.WriteString(":")
		printSliceComponent(p, e.Step)
	case *YieldExpr:
		p.sb.WriteString("(yield")
		if e.Value != nil {
			p.sb.WriteString(" ")
			p.printExpr(e.Value)
		}
		p.sb.WriteString(")")
	case *YieldFromExpr:
		p.sb.WriteString("(yield from ")
		p.printExpr(e.Value)
		p.sb.WriteString(")")
	case *CondExpr:
		p.sb.WriteString("(")
		p.printExpr(e.True)
		p.sb.WriteString(" if ")
		p.printExpr(e.Cond)
		p.sb.WriteString(" else ")
		p.printExpr(e.False)
		p.sb.WriteString(")")
	case *LambdaExpr:
		p.sb.WriteString("lambda ")
		p.printParameters(e.Function.Params, false)
		p.sb.WriteString(": ")
		if len(e.Function.Body) == 1 {
			if ret, ok := e.Function.Body[0].(*ReturnStmt); ok {
				p.printExpr(ret.Result)
			}
		}
	case *ComprehensionExpr:
		open, close := "[", "]"
		switch e.Kind {
		case SetComp, DictComp:
			open, close = "{", "}"
		case GenComp:
			open, close = "(", ")"
		}
		p.sb.WriteString(open)
		if e.Kind == DictComp {
			p.printExpr(e.Key)
			p.sb.WriteString(": ")
		}
		p.printExpr(e.Element)
		for _, g := range e.Generators {
			p.sb.WriteString(" for ")
			p.printExpr(g.Target)
			p.sb.WriteString(" in ")
			p.printExpr(g.Iter)
			for _, cond := range g.Ifs {
				p.sb.WriteString(" if ")
				p.printExpr(cond)
			}
		}
		p.sb.WriteString(close)
	default:
		p.sb.WriteString(fmt.Sprintf("<?expr %T>", e))
	}
}

func printSliceComponent(p *printer, e Expr) {
	if lit, ok := e.(*Literal); ok && lit.Token == NONE {
		return
	}
	p.printExpr(e)
}
