package syntax

// Walk traverses an AST in depth-first order, calling visit on each node
// before descending into its children. If visit returns false, Walk does
// not descend into that node's children. This follows the same
// visit-then-recurse shape as akashmaji946-go-mix's PrintingVisitor
// (print_visitor.go) and mcgru-funxy's internal/prettyprinter, collapsed
// into a single function (go/ast.Inspect's shape) rather than one
// interface method per node kind, since our grammar has far more node
// kinds than either of those and a full visitor interface would be mostly
// boilerplate.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, visit)
	case *PassStmt, *BranchStmt:
		// leaves
	case *DeleteStmt:
		walkExprs(n.Targets, visit)
	case *ExprStmt:
		Walk(n.X, visit)
	case *AssignStmt:
		walkExprs(n.Targets, visit)
		Walk(n.Value, visit)
	case *AugAssignStmt:
		Walk(n.Target, visit)
		Walk(n.Value, visit)
	case *ReturnStmt:
		Walk(n.Result, visit)
	case *RaiseStmt:
		Walk(n.Exc, visit)
		Walk(n.Cause, visit)
	case *GlobalStmt:
		for _, id := range n.Names {
			Walk(id, visit)
		}
	case *NonlocalStmt:
		for _, id := range n.Names {
			Walk(id, visit)
		}
	case *AssertStmt:
		Walk(n.Test, visit)
		Walk(n.Msg, visit)
	case *ImportStmt:
		// SingleImport holds only strings/positions, nothing to recurse into
	case *IfStmt:
		Walk(n.Test, visit)
		walkStmts(n.Body, visit)
		walkStmts(n.OrElse, visit)
	case *WhileStmt:
		Walk(n.Test, visit)
		walkStmts(n.Body, visit)
		walkStmts(n.OrElse, visit)
	case *ForStmt:
		Walk(n.Target, visit)
		Walk(n.Iter, visit)
		walkStmts(n.Body, visit)
		walkStmts(n.OrElse, visit)
	case *TryStmt:
		walkStmts(n.Body, visit)
		for _, h := range n.Handlers {
			Walk(h.Type, visit)
			walkIdent(h.Name, visit)
			walkStmts(h.Body, visit)
		}
		walkStmts(n.OrElse, visit)
		walkStmts(n.FinalBody, visit)
	case *WithStmt:
		for _, it := range n.Items {
			Walk(it.Ctx, visit)
			Walk(it.Target, visit)
		}
		walkStmts(n.Body, visit)
	case *FunctionDef:
		for _, d := range n.Decorators {
			Walk(d, visit)
		}
		Walk(n.Name, visit)
		walkParameters(n.Function.Params, visit)
		Walk(n.Returns, visit)
		walkStmts(n.Function.Body, visit)
	case *ClassDef:
		for _, d := range n.Decorators {
			Walk(d, visit)
		}
		Walk(n.Name, visit)
		walkExprs(n.Bases, visit)
		for _, kw := range n.Keywords {
			walkIdent(kw.Name, visit)
			Walk(kw.Value, visit)
		}
		walkStmts(n.Body, visit)
	case *Ident, *Literal:
		// leaves
	case *StrExpr:
		walkStringGroup(n.Group, visit)
	case *BytesExpr:
		// leaf
	case *TupleExpr:
		walkExprs(n.List, visit)
	case *ListExpr:
		walkExprs(n.List, visit)
	case *SetExpr:
		walkExprs(n.List, visit)
	case *DictExpr:
		for _, e := range n.List {
			Walk(e.Key, visit)
			Walk(e.Value, visit)
		}
	case *BoolOp:
		walkExprs(n.Values, visit)
	case *BinaryExpr:
		Walk(n.X, visit)
		Walk(n.Y, visit)
	case *UnaryExpr:
		Walk(n.X, visit)
	case *CompareExpr:
		walkExprs(n.Vals, visit)
	case *CallExpr:
		Walk(n.Fn, visit)
		walkExprs(n.Args, visit)
		for _, kw := range n.Keywords {
			walkIdent(kw.Name, visit)
			Walk(kw.Value, visit)
		}
	case *StarredExpr:
		Walk(n.X, visit)
	case *DotExpr:
		Walk(n.X, visit)
		Walk(n.Name, visit)
	case *IndexExpr:
		Walk(n.X, visit)
		Walk(n.Index, visit)
	case *SliceExpr:
		Walk(n.Lo, visit)
		Walk(n.Hi, visit)
		Walk(n.Step, visit)
	case *YieldExpr:
		Walk(n.Value, visit)
	case *YieldFromExpr:
		Walk(n.Value, visit)
	case *CondExpr:
		Walk(n.True, visit)
		Walk(n.Cond, visit)
		Walk(n.False, visit)
	case *LambdaExpr:
		walkParameters(n.Function.Params, visit)
		walkStmts(n.Function.Body, visit)
	case *ComprehensionExpr:
		Walk(n.Key, visit)
		Walk(n.Element, visit)
		for _, g := range n.Generators {
			Walk(g.Target, visit)
			Walk(g.Iter, visit)
			walkExprs(g.Ifs, visit)
		}
	}
}

func walkStmts(stmts []Stmt, visit func(Node) bool) {
	for _, s := range stmts {
		Walk(s, visit)
	}
}

func walkExprs(exprs []Expr, visit func(Node) bool) {
	for _, e := range exprs {
		Walk(e, visit)
	}
}

func walkParameters(p *Parameters, visit func(Node) bool) {
	if p == nil {
		return
	}
	for _, param := range p.Args {
		Walk(param.Name, visit)
		Walk(param.Annotation, visit)
	}
	walkExprs(p.Defaults, visit)
	if p.Vararg.Kind == VarargNamed {
		Walk(p.Vararg.Param.Name, visit)
		Walk(p.Vararg.Param.Annotation, visit)
	}
	for _, param := range p.KwOnlyArgs {
		Walk(param.Name, visit)
		Walk(param.Annotation, visit)
	}
	walkExprs(p.KwDefaults, visit)
	if p.Kwarg != nil {
		Walk(p.Kwarg.Name, visit)
		Walk(p.Kwarg.Annotation, visit)
	}
}

// walkIdent guards against the classic nil-concrete-pointer-in-interface
// trap: a nil *Ident assigned straight into the Node parameter would not
// compare equal to nil once boxed, so callers with an optional *Ident
// (an absent `except ... as name`, a `**`-spread keyword) must check here
// instead of relying on Walk's own nil check.
func walkIdent(id *Ident, visit func(Node) bool) {
	if id != nil {
		Walk(id, visit)
	}
}

func walkStringGroup(g StringGroup, visit func(Node) bool) {
	switch g := g.(type) {
	case *FormattedValue:
		Walk(g.Value, visit)
	case *Joined:
		for _, c := range g.Children {
			walkStringGroup(c, visit)
		}
	}
}

// Walk treats a nil Expr/Stmt interface value as a no-op; Node's dynamic
// type check above only matters when Walk is invoked directly on a typed
// nil pointer, which none of the constructors here produce.
