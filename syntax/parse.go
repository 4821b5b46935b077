package syntax

import (
	"log"
	"strings"
)

// This file is the grammar core: a hand-written recursive-descent parser
// implementing spec.md §4's statement and expression productions, built the
// way the teacher (google/starlark-go's syntax.Parser) builds its own:
// panic/recover error propagation through scanError (see scan.go's
// errorf/recover), a one-token lookahead held in p.tok/p.tokval, and a
// consume(Token) helper that checks and advances in one call. Where this
// grammar needs more than the teacher's Skylark subset -- classes, try/
// except/with, decorators, typed/defaulted/varargs/kwonly parameters, the
// full Python precedence cascade, slices, f-strings -- it is grounded on
// akashmaji946-go-mix and mcgru-funxy's own recursive-descent expression
// parsers for the shape of a precedence ladder expressed as one function
// per level rather than a Pratt table, since that is the style the teacher
// itself uses for its own (smaller) cascade.
//
// §4.1's single LALR(1) start symbol multiplexing three entry points has no
// direct analogue in a hand-written descent parser; it is instead
// implemented by the scanner injecting one of the three Start* sentinels as
// the very first token (see scan.go), which parseTop switches on below.

const debug = false

type parser struct {
	in     *scanner
	tok    Token
	tokval tokenValue
}

func (p *parser) nextToken() Position {
	oldpos := p.tokval.pos
	p.tok = p.in.nextToken(&p.tokval)
	if debug {
		log.Printf("nextToken: %-20s%+v\n", p.tok, p.tokval.pos)
	}
	return oldpos
}

// consume requires the current token to be t, then advances past it.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.in.errorf(p.tokval.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.tokval.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.tokval.pos, Name: p.tokval.raw}
	p.nextToken()
	return id
}

// atSimpleStmtEnd reports whether the current token could legally end a
// simple statement (bare `return`, bare `yield`, and so on).
func (p *parser) atSimpleStmtEnd() bool {
	switch p.tok {
	case EOF, NEWLINE, SEMI:
		return true
	}
	return false
}

// ---------------------------------------------------------------------
// Entry points (§4.1)

func parseTop(filename string, src interface{}, entry Token) (top *Top, err error) {
	in, serr := newScanner(filename, src, entry)
	if serr != nil {
		return nil, serr
	}
	p := &parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // consumes the injected entry sentinel into p.tok
	switch p.tok {
	case StartProgram:
		p.nextToken()
		f := p.parseFileInput()
		f.Path = filename
		return &Top{Kind: TopProgram, Program: f}, nil
	case StartStatement:
		p.nextToken()
		stmts := p.parseStmtList(EOF)
		return &Top{Kind: TopStatement, Statements: stmts}, nil
	case StartExpression:
		p.nextToken()
		expr := p.parseTest()
		// the scanner ends the last logical line with NEWLINE
		for p.tok == NEWLINE {
			p.nextToken()
		}
		if p.tok != EOF {
			p.in.errorf(p.tokval.pos, "got %#v after expression, want EOF", p.tok)
		}
		return &Top{Kind: TopExpression, Expression: expr}, nil
	}
	p.in.errorf(p.tokval.pos, "got %#v, want start-of-input", p.tok)
	panic("unreachable")
}

// Parse parses the named source as a complete program.
func Parse(filename string, src interface{}) (*File, error) {
	top, err := parseTop(filename, src, StartProgram)
	if err != nil {
		return nil, err
	}
	return top.Program, nil
}

// ParseStatement parses the named source as a statement list, as typed at
// an interactive prompt or substituted into an enclosing block.
func ParseStatement(filename string, src interface{}) ([]Stmt, error) {
	top, err := parseTop(filename, src, StartStatement)
	if err != nil {
		return nil, err
	}
	return top.Statements, nil
}

// ParseExpr parses the named source as a single expression. Its signature
// is load-bearing: fstring.go calls it to parse each `{...}` replacement
// field, so it must stay (filename string, src interface{}) (Expr, error).
func ParseExpr(filename string, src interface{}) (Expr, error) {
	top, err := parseTop(filename, src, StartExpression)
	if err != nil {
		return nil, err
	}
	return top.Expression, nil
}

// ---------------------------------------------------------------------
// Statement layer (§4.2)

// parseStmtList parses statements until stop (EOF or OUTDENT), skipping
// the stray NEWLINE tokens the scanner emits for blank and comment-only
// lines -- including inside an indented suite, not just at the top level.
func (p *parser) parseStmtList(stop Token) []Stmt {
	var stmts []Stmt
	for p.tok != stop && p.tok != EOF {
		if p.tok == NEWLINE {
			p.nextToken()
			continue
		}
		stmts = p.parseStmt(stmts)
	}
	return stmts
}

func (p *parser) parseFileInput() *File {
	return &File{Stmts: p.parseStmtList(EOF)}
}

func (p *parser) parseStmt(stmts []Stmt) []Stmt {
	switch p.tok {
	case IF:
		return append(stmts, p.parseIfStmt())
	case WHILE:
		return append(stmts, p.parseWhileStmt())
	case FOR:
		return append(stmts, p.parseForStmt())
	case TRY:
		return append(stmts, p.parseTryStmt())
	case WITH:
		return append(stmts, p.parseWithStmt())
	case DEF:
		return append(stmts, p.parseFuncDef(nil))
	case CLASS:
		return append(stmts, p.parseClassDef(nil))
	case AT:
		return append(stmts, p.parseDecorated())
	default:
		return p.parseSimpleStmtLine(stmts)
	}
}

// parseSimpleStmtLine parses `small_stmt (';' small_stmt)* [';'] NEWLINE`.
func (p *parser) parseSimpleStmtLine(stmts []Stmt) []Stmt {
	for {
		stmts = append(stmts, p.parseSmallStmt())
		if p.tok != SEMI {
			break
		}
		p.nextToken()
		if p.tok == NEWLINE || p.tok == EOF {
			break
		}
	}
	if p.tok != EOF {
		p.consume(NEWLINE)
	}
	return stmts
}

// parseSuite parses either an indented block or a same-line simple
// statement: `NEWLINE INDENT stmt+ OUTDENT | simple_stmt`.
func (p *parser) parseSuite() []Stmt {
	if p.tok == NEWLINE {
		p.nextToken()
		p.consume(INDENT)
		stmts := p.parseStmtList(OUTDENT)
		p.consume(OUTDENT)
		return stmts
	}
	return p.parseSimpleStmtLine(nil)
}

func (p *parser) parseSmallStmt() Stmt {
	switch p.tok {
	case PASS:
		pos := p.nextToken()
		return &PassStmt{Pos_: pos}
	case BREAK, CONTINUE:
		tok := p.tok
		pos := p.nextToken()
		return &BranchStmt{Token: tok, TokenPos: pos}
	case DEL:
		return p.parseDeleteStmt()
	case RETURN:
		return p.parseReturnStmt()
	case RAISE:
		return p.parseRaiseStmt()
	case IMPORT, FROM:
		return p.parseImportStmt()
	case GLOBAL:
		return p.parseGlobalStmt()
	case NONLOCAL:
		return p.parseNonlocalStmt()
	case ASSERT:
		return p.parseAssertStmt()
	case YIELD:
		y := p.parseYieldExpr()
		return &ExprStmt{X: y}
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseDeleteStmt() Stmt {
	pos := p.nextToken()
	targets := []Expr{p.parseOrTest()}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			break
		}
		targets = append(targets, p.parseOrTest())
	}
	return &DeleteStmt{Pos_: pos, Targets: targets}
}

func (p *parser) parseReturnStmt() Stmt {
	pos := p.nextToken()
	var result Expr
	if !p.atSimpleStmtEnd() {
		result = p.parseTestList()
	}
	return &ReturnStmt{Pos_: pos, Result: result}
}

func (p *parser) parseRaiseStmt() Stmt {
	pos := p.nextToken()
	var exc, cause Expr
	if !p.atSimpleStmtEnd() {
		exc = p.parseTest()
		if p.tok == FROM {
			p.nextToken()
			cause = p.parseTest()
		}
	}
	return &RaiseStmt{Pos_: pos, Exc: exc, Cause: cause}
}

func (p *parser) parseGlobalStmt() Stmt {
	pos := p.nextToken()
	names := []*Ident{p.parseIdent()}
	for p.tok == COMMA {
		p.nextToken()
		names = append(names, p.parseIdent())
	}
	return &GlobalStmt{Pos_: pos, Names: names}
}

func (p *parser) parseNonlocalStmt() Stmt {
	pos := p.nextToken()
	names := []*Ident{p.parseIdent()}
	for p.tok == COMMA {
		p.nextToken()
		names = append(names, p.parseIdent())
	}
	return &NonlocalStmt{Pos_: pos, Names: names}
}

func (p *parser) parseAssertStmt() Stmt {
	pos := p.nextToken()
	test := p.parseTest()
	var msg Expr
	if p.tok == COMMA {
		p.nextToken()
		msg = p.parseTest()
	}
	return &AssertStmt{Pos_: pos, Test: test, Msg: msg}
}

func (p *parser) parseDottedName() string {
	name := p.parseIdent().Name
	for p.tok == DOT {
		p.nextToken()
		name += "." + p.parseIdent().Name
	}
	return name
}

// parseImportStmt handles both `import a.b.c as d, e` and
// `from ...pkg import (a as A, b)` / `from pkg import *` forms (§4.2); `*`
// is accepted only on its own, not inside a name list. Relative-import dots
// may arrive as individual DOT tokens or, for three or more consecutive
// dots, as a single ELLIPSIS token (scanOperator's three-char lookahead),
// so both are accepted while accumulating the leading-dots prefix.
func (p *parser) parseImportStmt() Stmt {
	if p.tok == IMPORT {
		pos := p.nextToken()
		var parts []*SingleImport
		for {
			modPos := p.tokval.pos
			module := p.parseDottedName()
			alias := ""
			if p.tok == AS {
				p.nextToken()
				alias = p.parseIdent().Name
			}
			parts = append(parts, &SingleImport{ModulePos: modPos, Module: module, Alias: alias})
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		return &ImportStmt{Pos_: pos, Parts: parts}
	}

	pos := p.nextToken() // consume FROM
	modPos := p.tokval.pos
	dots := ""
	for p.tok == DOT || p.tok == ELLIPSIS {
		if p.tok == ELLIPSIS {
			dots += "..."
		} else {
			dots += "."
		}
		p.nextToken()
	}
	module := dots
	if p.tok == IDENT {
		module += p.parseDottedName()
	}
	p.consume(IMPORT)

	var parts []*SingleImport
	if p.tok == STAR {
		p.nextToken()
		parts = append(parts, &SingleImport{ModulePos: modPos, Module: module, Symbol: "*"})
		return &ImportStmt{Pos_: pos, Parts: parts}
	}

	paren := false
	if p.tok == LPAREN {
		p.nextToken()
		paren = true
	}
	for {
		sym := p.parseIdent().Name
		alias := ""
		if p.tok == AS {
			p.nextToken()
			alias = p.parseIdent().Name
		}
		parts = append(parts, &SingleImport{ModulePos: modPos, Module: module, Symbol: sym, Alias: alias})
		if p.tok != COMMA {
			break
		}
		p.nextToken()
		if paren && p.tok == RPAREN {
			break
		}
		if !paren && (p.tok == NEWLINE || p.tok == SEMI || p.tok == EOF) {
			break
		}
	}
	if paren {
		p.consume(RPAREN)
	}
	return &ImportStmt{Pos_: pos, Parts: parts}
}

// parseIfStmt folds a chain of `elif`s into nested IfStmt.OrElse, per §4.2:
// each elif becomes the sole statement of its predecessor's OrElse.
func (p *parser) parseIfStmt() Stmt {
	ifPos := p.nextToken()
	cond := p.parseTest()
	p.consume(COLON)
	body := p.parseSuite()
	head := &IfStmt{Pos_: ifPos, Test: cond, Body: body}

	tail := head
	for p.tok == ELIF {
		elifPos := p.nextToken()
		econd := p.parseTest()
		p.consume(COLON)
		ebody := p.parseSuite()
		elif := &IfStmt{Pos_: elifPos, Test: econd, Body: ebody}
		tail.ElsePos = elifPos
		tail.OrElse = []Stmt{elif}
		tail = elif
	}
	if p.tok == ELSE {
		tail.ElsePos = p.nextToken()
		p.consume(COLON)
		tail.OrElse = p.parseSuite()
	}
	return head
}

func (p *parser) parseWhileStmt() Stmt {
	pos := p.nextToken()
	test := p.parseTest()
	p.consume(COLON)
	body := p.parseSuite()
	var orelse []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		orelse = p.parseSuite()
	}
	return &WhileStmt{Pos_: pos, Test: test, Body: body, OrElse: orelse}
}

func (p *parser) parseForStmt() Stmt {
	pos := p.nextToken()
	target := p.parseTargetList()
	p.consume(IN)
	iter := p.parseTestList()
	p.consume(COLON)
	body := p.parseSuite()
	var orelse []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		orelse = p.parseSuite()
	}
	return &ForStmt{Pos_: pos, Target: target, Iter: iter, Body: body, OrElse: orelse}
}

func (p *parser) parseTryStmt() Stmt {
	pos := p.nextToken()
	p.consume(COLON)
	body := p.parseSuite()

	var handlers []*ExceptHandler
	for p.tok == EXCEPT {
		hpos := p.nextToken()
		var typ Expr
		var name *Ident
		if p.tok != COLON {
			typ = p.parseTest()
			if p.tok == AS {
				p.nextToken()
				name = p.parseIdent()
			}
		}
		p.consume(COLON)
		hbody := p.parseSuite()
		handlers = append(handlers, &ExceptHandler{Pos_: hpos, Type: typ, Name: name, Body: hbody})
	}

	var orelse, finalbody []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		orelse = p.parseSuite()
	}
	if p.tok == FINALLY {
		p.nextToken()
		p.consume(COLON)
		finalbody = p.parseSuite()
	}
	return &TryStmt{Pos_: pos, Body: body, Handlers: handlers, OrElse: orelse, FinalBody: finalbody}
}

func (p *parser) parseWithStmt() Stmt {
	pos := p.nextToken()
	var items []*WithItem
	for {
		ctx := p.parseOrTest()
		var target Expr
		if p.tok == AS {
			p.nextToken()
			target = p.parseOrTestOrStar()
		}
		items = append(items, &WithItem{Ctx: ctx, Target: target})
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &WithStmt{Pos_: pos, Items: items, Body: body}
}

// ---------------------------------------------------------------------
// Decorators, function defs, class defs (§4.5, §4.6)

func (p *parser) parseDecoratorPath() Expr {
	var e Expr = p.parseIdent()
	for p.tok == DOT {
		dot := p.nextToken()
		name := p.parseIdent()
		e = &DotExpr{X: e, Dot: dot, Name: name}
	}
	return e
}

func (p *parser) parseDecorated() Stmt {
	var decorators []Expr
	for p.tok == AT {
		p.nextToken()
		path := p.parseDecoratorPath()
		var expr Expr = path
		if p.tok == LPAREN {
			lparen := p.nextToken()
			var args []Expr
			var keywords []*Keyword
			if p.tok != RPAREN {
				args, keywords = p.parseCallArgs()
			}
			rparen := p.consume(RPAREN)
			expr = &CallExpr{Fn: path, Lparen: lparen, Args: args, Keywords: keywords, Rparen: rparen}
		}
		p.consume(NEWLINE)
		decorators = append(decorators, expr)
	}
	switch p.tok {
	case DEF:
		return p.parseFuncDef(decorators)
	case CLASS:
		return p.parseClassDef(decorators)
	default:
		p.in.errorf(p.tokval.pos, "got %#v, want def or class after decorator", p.tok)
		panic("unreachable")
	}
}

func (p *parser) parseFuncDef(decorators []Expr) Stmt {
	defPos := p.nextToken()
	name := p.parseIdent()
	p.consume(LPAREN)
	params := p.parseParameters(true, RPAREN)
	p.consume(RPAREN)
	var returns Expr
	if p.tok == ARROW {
		p.nextToken()
		returns = p.parseTest()
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &FunctionDef{
		Def:        defPos,
		Name:       name,
		Function:   Function{StartPos: defPos, Params: params, Body: body},
		Decorators: decorators,
		Returns:    returns,
	}
}

func (p *parser) parseClassDef(decorators []Expr) Stmt {
	classPos := p.nextToken()
	name := p.parseIdent()
	var bases []Expr
	var keywords []*Keyword
	if p.tok == LPAREN {
		p.nextToken()
		if p.tok != RPAREN {
			bases, keywords = p.parseCallArgs()
		}
		p.consume(RPAREN)
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &ClassDef{Class: classPos, Name: name, Bases: bases, Keywords: keywords, Body: body, Decorators: decorators}
}

// ---------------------------------------------------------------------
// Parameters: shared by def and lambda (§4.5), typed only for def.

func (p *parser) parseParamDef(typed bool) *Parameter {
	name := p.parseIdent()
	var ann Expr
	if typed && p.tok == COLON {
		p.nextToken()
		ann = p.parseTest()
	}
	return &Parameter{Name: name, Annotation: ann}
}

// parseParameters parses a def/lambda parameter list up to stop (RPAREN or
// COLON). It rejects a non-default positional argument following a
// default one, and enforces `**kwargs` as the final entry.
func (p *parser) parseParameters(typed bool, stop Token) *Parameters {
	params := &Parameters{}
	sawDefault := false
	sawStar := false
	for p.tok != stop && p.tok != EOF {
		switch p.tok {
		case STAR:
			if sawStar {
				p.in.errorf(p.tokval.pos, "duplicate * in parameter list")
			}
			sawStar = true
			starPos := p.nextToken()
			if p.tok == IDENT {
				param := p.parseParamDef(typed)
				params.Vararg = Varargs{Kind: VarargNamed, Param: param, Pos: starPos}
			} else {
				params.Vararg = Varargs{Kind: VarargAnonymous, Pos: starPos}
			}
		case STARSTAR:
			p.nextToken()
			kwarg := p.parseParamDef(typed)
			params.Kwarg = kwarg
			if p.tok == COMMA {
				p.nextToken()
			}
			return params
		default:
			param := p.parseParamDef(typed)
			var def Expr
			if p.tok == EQ {
				p.nextToken()
				def = p.parseTest()
			}
			switch {
			case sawStar:
				params.KwOnlyArgs = append(params.KwOnlyArgs, param)
				params.KwDefaults = append(params.KwDefaults, def)
			case def != nil:
				sawDefault = true
				params.Args = append(params.Args, param)
				params.Defaults = append(params.Defaults, def)
			default:
				if sawDefault {
					p.in.errorf(param.Name.NamePos, "non-default argument follows default argument: %s", param.Name.Name)
				}
				params.Args = append(params.Args, param)
			}
		}
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return params
}

// ---------------------------------------------------------------------
// Expressions: precedence cascade (§4.3), one function per level, lowest
// (Test, ternary/lambda) to highest (atom/trailer).

func (p *parser) parseTest() Expr {
	if p.tok == LAMBDA {
		return p.parseLambda()
	}
	x := p.parseOrTest()
	if p.tok == IF {
		ifPos := p.nextToken()
		cond := p.parseOrTest()
		if p.tok != ELSE {
			p.in.errorf(p.tokval.pos, "conditional expression without else clause")
		}
		elsePos := p.nextToken()
		elseVal := p.parseTest()
		return &CondExpr{True: x, If: ifPos, Cond: cond, ElsePos: elsePos, False: elseVal}
	}
	return x
}

func (p *parser) parseLambda() Expr {
	lambdaPos := p.nextToken()
	var params *Parameters
	if p.tok != COLON {
		params = p.parseParameters(false, COLON)
	} else {
		params = &Parameters{}
	}
	p.consume(COLON)
	body := p.parseTest()
	return &LambdaExpr{
		Lambda:   lambdaPos,
		Function: Function{StartPos: lambdaPos, Params: params, Body: []Stmt{&ReturnStmt{Pos_: lambdaPos, Result: body}}},
	}
}

func (p *parser) parseOrTest() Expr {
	x := p.parseAndTest()
	if p.tok != OR {
		return x
	}
	opPos := p.tokval.pos
	values := []Expr{x}
	for p.tok == OR {
		p.nextToken()
		values = append(values, p.parseAndTest())
	}
	return &BoolOp{Op: OR, OpPos: opPos, Values: values}
}

func (p *parser) parseAndTest() Expr {
	x := p.parseNotTest()
	if p.tok != AND {
		return x
	}
	opPos := p.tokval.pos
	values := []Expr{x}
	for p.tok == AND {
		p.nextToken()
		values = append(values, p.parseNotTest())
	}
	return &BoolOp{Op: AND, OpPos: opPos, Values: values}
}

func (p *parser) parseNotTest() Expr {
	if p.tok == NOT {
		pos := p.nextToken()
		x := p.parseNotTest()
		return &UnaryExpr{OpPos: pos, Op: NOT, X: x}
	}
	return p.parseComparison()
}

// tryComparisonOp consumes a comparison operator if present, synthesizing
// the NOT_IN / IS_NOT tokens (never produced directly by the scanner) for
// the two-keyword forms.
func (p *parser) tryComparisonOp() (Token, bool) {
	switch p.tok {
	case EQL, NEQ, LT, LE, GT, GE, IN:
		op := p.tok
		p.nextToken()
		return op, true
	case IS:
		p.nextToken()
		if p.tok == NOT {
			p.nextToken()
			return IS_NOT, true
		}
		return IS, true
	case NOT:
		p.nextToken()
		if p.tok != IN {
			p.in.errorf(p.tokval.pos, "got %#v, want in", p.tok)
		}
		p.nextToken()
		return NOT_IN, true
	}
	return ILLEGAL, false
}

// parseComparison builds a non-associative chain: `a < b <= c` becomes one
// CompareExpr with Vals=[a,b,c], Ops=[LT,LE], never nested BinaryExprs.
func (p *parser) parseComparison() Expr {
	x := p.parseBitOr()
	var vals []Expr
	var ops []Token
	for {
		op, ok := p.tryComparisonOp()
		if !ok {
			break
		}
		y := p.parseBitOr()
		if vals == nil {
			vals = []Expr{x}
		}
		vals = append(vals, y)
		ops = append(ops, op)
	}
	if vals == nil {
		return x
	}
	return &CompareExpr{Vals: vals, Ops: ops}
}

func (p *parser) parseBitOr() Expr {
	x := p.parseBitXor()
	for p.tok == PIPE {
		op := p.tok
		pos := p.nextToken()
		y := p.parseBitXor()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseBitXor() Expr {
	x := p.parseBitAnd()
	for p.tok == CARET {
		op := p.tok
		pos := p.nextToken()
		y := p.parseBitAnd()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseBitAnd() Expr {
	x := p.parseShift()
	for p.tok == AMP {
		op := p.tok
		pos := p.nextToken()
		y := p.parseShift()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseShift() Expr {
	x := p.parseArith()
	for p.tok == LTLT || p.tok == GTGT {
		op := p.tok
		pos := p.nextToken()
		y := p.parseArith()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseArith() Expr {
	x := p.parseTerm()
	for p.tok == PLUS || p.tok == MINUS {
		op := p.tok
		pos := p.nextToken()
		y := p.parseTerm()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseTerm() Expr {
	x := p.parseFactor()
	for p.tok == STAR || p.tok == SLASH || p.tok == SLASHSLASH || p.tok == PERCENT || p.tok == AT {
		op := p.tok
		pos := p.nextToken()
		y := p.parseFactor()
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

// parseFactor handles the right-associative unary +/-/~ (§4.3: `--x` is
// `-(-x)`, and unary binds tighter than binary * but looser than **).
func (p *parser) parseFactor() Expr {
	switch p.tok {
	case PLUS, MINUS, TILDE:
		op := p.tok
		pos := p.nextToken()
		x := p.parseFactor()
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}
	return p.parsePower()
}

// parsePower implements `**`'s right-associativity by recursing back into
// parseFactor for its right operand (so `2 ** -3` parses as `2 ** (-3)`,
// and `2 ** 3 ** 2` as `2 ** (3 ** 2)`).
func (p *parser) parsePower() Expr {
	x := p.parseAtomTrailer()
	if p.tok == STARSTAR {
		pos := p.nextToken()
		y := p.parseFactor()
		return &BinaryExpr{X: x, OpPos: pos, Op: STARSTAR, Y: y}
	}
	return x
}

func (p *parser) parseAtomTrailer() Expr {
	x := p.parseAtom()
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			name := p.parseIdent()
			x = &DotExpr{X: x, Dot: dot, Name: name}
		case LPAREN:
			x = p.parseCallSuffix(x)
		case LBRACK:
			x = p.parseSubscriptSuffix(x)
		default:
			return x
		}
	}
}

func (p *parser) parseCallSuffix(fn Expr) Expr {
	lparen := p.nextToken()
	var args []Expr
	var keywords []*Keyword
	if p.tok != RPAREN {
		args, keywords = p.parseCallArgs()
	}
	rparen := p.consume(RPAREN)
	return &CallExpr{Fn: fn, Lparen: lparen, Args: args, Keywords: keywords, Rparen: rparen}
}

// noneExpr fills a missing slice bound. Per position.go's documented
// convention, a zero Position marks a synthetic node, so this deliberately
// does not carry the enclosing bracket's position.
func noneExpr() Expr { return &Literal{Token: NONE} }

// parseSubscript parses one `[lo][:hi[:step]]` component inside `[...]`.
// A bare expression with no colon is returned as a plain index, letting
// the caller distinguish `a[i]` from `a[i:]`.
func (p *parser) parseSubscript() Expr {
	var lo Expr
	if p.tok != COLON {
		lo = p.parseTest()
		if p.tok != COLON {
			return lo
		}
	}
	if lo == nil {
		lo = noneExpr()
	}
	p.nextToken() // consume ':'

	var hi Expr
	if p.tok != COLON && p.tok != RBRACK && p.tok != COMMA {
		hi = p.parseTest()
	} else {
		hi = noneExpr()
	}

	var step Expr
	if p.tok == COLON {
		p.nextToken()
		if p.tok != RBRACK && p.tok != COMMA {
			step = p.parseTest()
		} else {
			step = noneExpr()
		}
	} else {
		step = noneExpr()
	}
	return &SliceExpr{Lo: lo, Hi: hi, Step: step}
}

func (p *parser) parseSubscriptSuffix(x Expr) Expr {
	lbrack := p.nextToken()
	first := p.parseSubscript()
	if p.tok != COMMA {
		rbrack := p.consume(RBRACK)
		return &IndexExpr{X: x, Lbrack: lbrack, Index: first, Rbrack: rbrack}
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == RBRACK {
			break
		}
		list = append(list, p.parseSubscript())
	}
	rbrack := p.consume(RBRACK)
	return &IndexExpr{X: x, Lbrack: lbrack, Index: &TupleExpr{List: list}, Rbrack: rbrack}
}

// ---------------------------------------------------------------------
// Atoms and literals (§4.4)

func (p *parser) parseAtom() Expr {
	switch p.tok {
	case IDENT:
		return p.parseIdent()
	case INT:
		return p.parseIntLiteralAtom()
	case FLOAT:
		pos, raw, v := p.tokval.pos, p.tokval.raw, p.tokval.float
		p.nextToken()
		return &Literal{Token: FLOAT, TokenPos: pos, Raw: raw, Value: v}
	case COMPLEX:
		pos, raw, v := p.tokval.pos, p.tokval.raw, p.tokval.complex
		p.nextToken()
		return &Literal{Token: COMPLEX, TokenPos: pos, Raw: raw, Value: v}
	case STRING:
		return p.parseStringGroup()
	case BYTES:
		return p.parseBytesGroup()
	case TRUE, FALSE, NONE, ELLIPSIS:
		tok, pos := p.tok, p.tokval.pos
		p.nextToken()
		return &Literal{Token: tok, TokenPos: pos, Raw: tok.String()}
	case LPAREN:
		return p.parseParenForm()
	case LBRACK:
		return p.parseListOrComp()
	case LBRACE:
		return p.parseDictOrSetOrComp()
	}
	p.in.errorf(p.tokval.pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

func (p *parser) parseIntLiteralAtom() Expr {
	pos, raw := p.tokval.pos, p.tokval.raw
	n, err := parseIntLiteral(p.tokval.int)
	if err != nil {
		p.in.errorf(pos, "%s", err)
	}
	p.nextToken()
	return &Literal{Token: INT, TokenPos: pos, Raw: raw, Value: n}
}

// parseStringGroup concatenates adjacent string tokens (§9) and delegates
// any f-string token among them to ParseFString, combining everything
// into one StrExpr whose Group is the single child, or a Joined of them.
func (p *parser) parseStringGroup() Expr {
	startPos := p.tokval.pos
	var rawParts []string
	var children []StringGroup
	for p.tok == STRING {
		text, isF, raw, pos := p.tokval.string, p.tokval.isFStr, p.tokval.raw, p.tokval.pos
		rawParts = append(rawParts, raw)
		p.nextToken()
		if isF {
			g, ferr := ParseFString(p.in.filename, pos, text)
			if ferr != nil {
				p.in.errorf(pos, "%s", ferr)
			}
			children = append(children, g)
		} else {
			children = append(children, &Constant{Value: text})
		}
	}
	var group StringGroup
	if len(children) == 1 {
		group = children[0]
	} else {
		group = &Joined{Children: children}
	}
	return &StrExpr{TokenPos: startPos, Raw: strings.Join(rawParts, ""), Group: group}
}

func (p *parser) parseBytesGroup() Expr {
	pos := p.tokval.pos
	var buf []byte
	for p.tok == BYTES {
		buf = append(buf, p.tokval.bytes...)
		p.nextToken()
	}
	return &BytesExpr{TokenPos: pos, Value: buf}
}

func (p *parser) parseTestOrStar() Expr {
	if p.tok == STAR {
		pos := p.nextToken()
		x := p.parseTest()
		return &StarredExpr{Star: pos, X: x}
	}
	return p.parseTest()
}

func (p *parser) parseOrTestOrStar() Expr {
	if p.tok == STAR {
		pos := p.nextToken()
		x := p.parseOrTest()
		return &StarredExpr{Star: pos, X: x}
	}
	return p.parseOrTest()
}

// parseParenForm disambiguates `(x)` (a plain grouped expression, not a
// tuple), `(x,)` (a one-element tuple), `(x, y)` (a tuple), `(x for ...)`
// (a generator expression), and `(yield x)`.
func (p *parser) parseParenForm() Expr {
	lparen := p.nextToken()
	if p.tok == RPAREN {
		rparen := p.nextToken()
		return &TupleExpr{Lparen: lparen, Rparen: rparen}
	}
	if p.tok == YIELD {
		y := p.parseYieldExpr()
		p.consume(RPAREN)
		return y
	}
	first := p.parseTestOrStar()
	if p.tok == FOR {
		gens := p.parseCompClauses()
		rparen := p.consume(RPAREN)
		return &ComprehensionExpr{Kind: GenComp, Lbrack: lparen, Element: first, Generators: gens, Rbrack: rparen}
	}
	if p.tok != COMMA {
		p.consume(RPAREN)
		return first
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == RPAREN {
			break
		}
		list = append(list, p.parseTestOrStar())
	}
	rparen := p.consume(RPAREN)
	return &TupleExpr{Lparen: lparen, List: list, Rparen: rparen}
}

func (p *parser) parseListOrComp() Expr {
	lbrack := p.nextToken()
	if p.tok == RBRACK {
		rbrack := p.nextToken()
		return &ListExpr{Lbrack: lbrack, Rbrack: rbrack}
	}
	first := p.parseTestOrStar()
	if p.tok == FOR {
		gens := p.parseCompClauses()
		rbrack := p.consume(RBRACK)
		return &ComprehensionExpr{Kind: ListComp, Lbrack: lbrack, Element: first, Generators: gens, Rbrack: rbrack}
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == RBRACK {
			break
		}
		list = append(list, p.parseTestOrStar())
	}
	rbrack := p.consume(RBRACK)
	return &ListExpr{Lbrack: lbrack, List: list, Rbrack: rbrack}
}

func (p *parser) parseDictOrSetOrComp() Expr {
	lbrace := p.nextToken()
	if p.tok == RBRACE {
		rbrace := p.nextToken()
		return &DictExpr{Lbrace: lbrace, Rbrace: rbrace}
	}
	first := p.parseTest()
	if p.tok == COLON {
		colon := p.nextToken()
		val := p.parseTest()
		if p.tok == FOR {
			gens := p.parseCompClauses()
			rbrace := p.consume(RBRACE)
			return &ComprehensionExpr{Kind: DictComp, Lbrack: lbrace, Key: first, Element: val, Generators: gens, Rbrack: rbrace}
		}
		entries := []*DictEntry{{Key: first, Colon: colon, Value: val}}
		for p.tok == COMMA {
			p.nextToken()
			if p.tok == RBRACE {
				break
			}
			k := p.parseTest()
			c := p.consume(COLON)
			v := p.parseTest()
			entries = append(entries, &DictEntry{Key: k, Colon: c, Value: v})
		}
		rbrace := p.consume(RBRACE)
		return &DictExpr{Lbrace: lbrace, List: entries, Rbrace: rbrace}
	}
	if p.tok == FOR {
		gens := p.parseCompClauses()
		rbrace := p.consume(RBRACE)
		return &ComprehensionExpr{Kind: SetComp, Lbrack: lbrace, Element: first, Generators: gens, Rbrack: rbrace}
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if p.tok == RBRACE {
			break
		}
		list = append(list, p.parseTest())
	}
	rbrace := p.consume(RBRACE)
	return &SetExpr{Lbrace: lbrace, List: list, Rbrace: rbrace}
}

// ---------------------------------------------------------------------
// Comprehensions (§4.8) and target lists (for-loop and `del`/`with as`)

// Targets are parsed at the bitwise-or level, below comparisons, so the
// `in` that follows a loop target is not taken as a comparison operator.
func (p *parser) parseTargetList() Expr {
	parseOne := func() Expr {
		if p.tok == STAR {
			pos := p.nextToken()
			return &StarredExpr{Star: pos, X: p.parseBitOr()}
		}
		return p.parseBitOr()
	}
	first := parseOne()
	if p.tok != COMMA {
		return first
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			break
		}
		list = append(list, parseOne())
	}
	return &TupleExpr{List: list}
}

// parseCompClauses parses one or more `for target in iter (if cond)*`
// clauses. The iterable is parsed at the or-test level, which excludes the
// bare ternary/lambda forms, matching §4.8's restriction.
func (p *parser) parseCompClauses() []*Comprehension {
	var gens []*Comprehension
	for p.tok == FOR {
		forPos := p.nextToken()
		target := p.parseTargetList()
		inPos := p.consume(IN)
		iter := p.parseOrTest()
		comp := &Comprehension{For: forPos, Target: target, In: inPos, Iter: iter}
		for p.tok == IF {
			p.nextToken()
			comp.Ifs = append(comp.Ifs, p.parseOrTest())
		}
		gens = append(gens, comp)
	}
	return gens
}

// ---------------------------------------------------------------------
// Assignment, augmented assignment, and call-argument lists (§4.7, §4.9)

func isAugAssignOp(t Token) bool {
	switch t {
	case PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, SLASHSLASH_EQ, PERCENT_EQ, MATMUL_EQ,
		AMP_EQ, PIPE_EQ, CARET_EQ, LTLT_EQ, GTGT_EQ, STARSTAR_EQ:
		return true
	}
	return false
}

// terminatesExprList reports whether tok can legally follow a trailing
// comma in an expression list, i.e. the list has ended without one more
// element (a trailing comma with nothing after it, or the comma was really
// a separator for an enclosing construct).
func terminatesExprList(tok Token) bool {
	switch tok {
	case EOF, NEWLINE, SEMI, EQ, COLON, IN, RPAREN, RBRACK, RBRACE:
		return true
	}
	return isAugAssignOp(tok)
}

func (p *parser) parseTestListStarExpr() Expr {
	first := p.parseTestOrStar()
	if p.tok != COMMA {
		return first
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			break
		}
		list = append(list, p.parseTestOrStar())
	}
	return &TupleExpr{List: list}
}

func (p *parser) parseTestList() Expr {
	first := p.parseTest()
	if p.tok != COMMA {
		return first
	}
	list := []Expr{first}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			break
		}
		list = append(list, p.parseTest())
	}
	return &TupleExpr{List: list}
}

// parseExprStmt parses a bare expression statement, an assignment (with
// possible chaining, `a = b = value`), or an augmented assignment.
func (p *parser) parseExprStmt() Stmt {
	first := p.parseTestListStarExpr()
	switch {
	case p.tok == EQ:
		targets := []Expr{first}
		var value Expr
		for {
			p.nextToken() // consume '='
			if p.tok == YIELD {
				value = p.parseYieldExpr()
				break
			}
			next := p.parseTestListStarExpr()
			if p.tok == EQ {
				targets = append(targets, next)
				continue
			}
			value = next
			break
		}
		pos, _ := first.Span()
		return &AssignStmt{Pos_: pos, Targets: targets, Value: value}
	case isAugAssignOp(p.tok):
		op := p.tok
		opPos := p.nextToken()
		var value Expr
		if p.tok == YIELD {
			value = p.parseYieldExpr()
		} else {
			value = p.parseTestList()
		}
		return &AugAssignStmt{Target: first, Op: op, OpPos: opPos, Value: value}
	default:
		return &ExprStmt{X: first}
	}
}

func (p *parser) parseYieldExpr() Expr {
	yieldPos := p.nextToken()
	if p.tok == FROM {
		fromPos := p.nextToken()
		val := p.parseTest()
		return &YieldFromExpr{Yield: yieldPos, From: fromPos, Value: val}
	}
	var val Expr
	if !p.atSimpleStmtEnd() && p.tok != RPAREN {
		val = p.parseTestList()
	}
	return &YieldExpr{Yield: yieldPos, Value: val}
}

// parseCallArgs parses a call or class-base argument list (after the
// opening paren has already been consumed, and the list is known
// non-empty): positional args (possibly `*x` spreads or a lone generator
// expression), then `name=value` keywords, then an optional `**x` spread.
// A positional argument following a keyword argument is rejected, per
// §4.7; a `*`-spread is still allowed after a keyword.
func (p *parser) parseCallArgs() ([]Expr, []*Keyword) {
	var args []Expr
	var keywords []*Keyword
	sawKeyword := false
	for {
		switch p.tok {
		case STAR:
			pos := p.nextToken()
			x := p.parseTest()
			args = append(args, &StarredExpr{Star: pos, X: x})
		case STARSTAR:
			p.nextToken()
			x := p.parseTest()
			keywords = append(keywords, &Keyword{Value: x})
			sawKeyword = true
		default:
			x := p.parseTest()
			switch {
			case p.tok == EQ:
				id, ok := x.(*Ident)
				if !ok {
					p.in.errorf(p.tokval.pos, "keyword argument must have form name=expr")
				}
				p.nextToken()
				val := p.parseTest()
				keywords = append(keywords, &Keyword{Name: id, Value: val})
				sawKeyword = true
			case p.tok == FOR:
				gens := p.parseCompClauses()
				args = append(args, &ComprehensionExpr{Kind: GenComp, Element: x, Generators: gens})
			default:
				if sawKeyword {
					p.in.errorf(p.tokval.pos, "positional argument follows keyword argument")
				}
				args = append(args, x)
			}
		}
		if p.tok != COMMA {
			break
		}
		p.nextToken()
		if p.tok == RPAREN {
			break
		}
	}
	return args, keywords
}
