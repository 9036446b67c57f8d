// Package prettyprinter renders decoded syntax trees back as source text.
// The output is what `mambacheck -print` shows, so a parser's JSON output
// can be compared with the program it came from.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/mambacheck/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"or":     1,
	"and":    2,
	"not":    3,
	"in":     4,
	"not in": 4,
	"is":     4,
	"is not": 4,
	"==":     4,
	"!=":     4,
	"<":      4,
	">":      4,
	"<=":     4,
	">=":     4,
	"|":      5,
	"^":      6,
	"&":      7,
	"<<":     8,
	">>":     8,
	"+":      9,
	"-":      9,
	"*":      10,
	"/":      10,
	"//":     10,
	"%":      10,
	"**":     12,
}

// unaryPrecedence applies to -x, +x and ~x; `not` has its own entry above.
const unaryPrecedence = 11

// conditionalPrecedence is below every binary operator.
const conditionalPrecedence = 0

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 13 // Default high precedence for unknown ops
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"**": true,
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders a whole program.
func Print(prog *ast.Program) string {
	p := NewCodePrinter()
	prog.Accept(p)
	return p.String()
}

// PrintExpr renders a single expression.
func PrintExpr(expr ast.Expression) string {
	p := NewCodePrinter()
	p.printExpr(expr, 0, false)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		prec := getPrecedence(e.Op)
		needParens := prec < parentPrec
		// For same precedence, check associativity
		if prec == parentPrec {
			if isRight && !rightAssoc[e.Op] {
				needParens = true
			} else if !isRight && rightAssoc[e.Op] {
				needParens = true
			}
		}
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Op + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.UnaryExpr:
		prec := unaryPrecedence
		op := e.Op
		if op == "not" {
			prec = getPrecedence("not")
			op = "not "
		}
		if prec < parentPrec {
			p.write("(")
		}
		p.write(op)
		p.printExpr(e.Operand, prec, false)
		if prec < parentPrec {
			p.write(")")
		}
	case *ast.ConditionalExpr, *ast.LambdaExpr:
		if parentPrec > conditionalPrecedence {
			p.write("(")
			expr.Accept(p)
			p.write(")")
			return
		}
		expr.Accept(p)
	default:
		// For non-operator expressions, just use visitor
		expr.Accept(p)
	}
}

func (p *CodePrinter) printExprList(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(e, 0, false)
	}
}

func (p *CodePrinter) printType(t ast.TypeExpr) {
	if t == nil {
		p.write("<???>")
		return
	}
	t.Accept(p)
}

// printBlock prints an indented suite. An empty suite prints `pass` so the
// output stays valid source.
func (p *CodePrinter) printBlock(stmts []ast.Statement) {
	p.write(":")
	p.writeln()
	p.indent++
	if len(stmts) == 0 {
		p.writeIndent()
		p.write("pass")
		p.writeln()
	}
	for i, s := range stmts {
		if i > 0 && isDefinition(s) {
			p.writeln()
		}
		p.printStmt(s)
	}
	p.indent--
}

func (p *CodePrinter) printStmt(s ast.Statement) {
	p.writeIndent()
	if s == nil {
		p.write("<???>")
		p.writeln()
		return
	}
	s.Accept(p)
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, stmt := range n.Statements {
		// Blank line before definitions
		if i > 0 && isDefinition(stmt) {
			p.writeln()
		}
		p.printStmt(stmt)
	}
}

func isDefinition(s ast.Statement) bool {
	switch s.(type) {
	case *ast.ClassDef, *ast.FunctionDef:
		return true
	}
	return false
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	if n == nil {
		p.write("<???>")
		return
	}
	p.write(n.Value)
}

// Statements

func (p *CodePrinter) VisitClassDef(n *ast.ClassDef) {
	p.write("class ")
	n.Name.Accept(p)
	var bases []string
	if len(n.TypeParams) > 0 {
		names := make([]string, len(n.TypeParams))
		for i, tp := range n.TypeParams {
			names[i] = tp.Value
		}
		bases = append(bases, "Generic["+strings.Join(names, ", ")+"]")
	}
	for _, b := range n.Bases {
		bases = append(bases, b.String())
	}
	if len(bases) > 0 {
		p.write("(" + strings.Join(bases, ", ") + ")")
	}
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitFunctionDef(n *ast.FunctionDef) {
	if n.Abstract {
		p.write("@abstractmethod")
		p.writeln()
		p.writeIndent()
	}
	p.write("def ")
	n.Name.Accept(p)
	if len(n.TypeParams) > 0 {
		p.write("[")
		for i, tp := range n.TypeParams {
			if i > 0 {
				p.write(", ")
			}
			tp.Accept(p)
		}
		p.write("]")
	}
	p.write("(")
	p.printParams(n.Params)
	p.write(")")
	if n.ReturnType != nil {
		p.write(" -> ")
		p.printType(n.ReturnType)
	}
	if n.Abstract && len(n.Body) == 0 {
		p.write(": ...")
		p.writeln()
		return
	}
	p.printBlock(n.Body)
}

func (p *CodePrinter) printParams(params []*ast.Param) {
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		if param.Variadic {
			p.write("*")
		}
		param.Name.Accept(p)
		if param.Type != nil {
			p.write(": ")
			p.printType(param.Type)
		}
		if param.Default != nil {
			if param.Type != nil {
				p.write(" = ")
			} else {
				p.write("=")
			}
			p.printExpr(param.Default, 0, false)
		}
	}
}

func (p *CodePrinter) VisitTypeAliasStmt(n *ast.TypeAliasStmt) {
	n.Name.Accept(p)
	p.write(": TypeAlias = ")
	p.printType(n.Value)
	p.writeln()
}

func (p *CodePrinter) VisitImportFromStmt(n *ast.ImportFromStmt) {
	p.write("from " + n.Module + " import ")
	for i, name := range n.Names {
		if i > 0 {
			p.write(", ")
		}
		name.Name.Accept(p)
		if name.Alias != nil {
			p.write(" as ")
			name.Alias.Accept(p)
		}
	}
	p.writeln()
}

func (p *CodePrinter) VisitAssignStmt(n *ast.AssignStmt) {
	p.printTarget(n.Target)
	if n.Annotation != nil {
		p.write(": ")
		p.printType(n.Annotation)
	}
	if n.Value != nil {
		p.write(" = ")
		p.printExpr(n.Value, 0, false)
	}
	p.writeln()
}

// printTarget prints assignment and loop targets; tuples go without
// parentheses.
func (p *CodePrinter) printTarget(target ast.Expression) {
	if tuple, ok := target.(*ast.TupleLiteral); ok && len(tuple.Elements) > 1 {
		p.printExprList(tuple.Elements)
		return
	}
	p.printExpr(target, 0, false)
}

func (p *CodePrinter) VisitAugAssignStmt(n *ast.AugAssignStmt) {
	p.printTarget(n.Target)
	p.write(" " + n.Op + "= ")
	p.printExpr(n.Value, 0, false)
	p.writeln()
}

func (p *CodePrinter) VisitExpressionStmt(n *ast.ExpressionStmt) {
	p.printExpr(n.Expression, 0, false)
	p.writeln()
}

func (p *CodePrinter) VisitReturnStmt(n *ast.ReturnStmt) {
	p.write("return")
	if n.Value != nil {
		p.write(" ")
		p.printExpr(n.Value, 0, false)
	}
	p.writeln()
}

func (p *CodePrinter) VisitIfStmt(n *ast.IfStmt) {
	p.write("if ")
	p.printExpr(n.Condition, 0, false)
	p.printBlock(n.Then)
	for len(n.Else) > 0 {
		// An elif chain is a lone nested if in the else branch.
		if nested, ok := n.Else[0].(*ast.IfStmt); ok && len(n.Else) == 1 {
			p.writeIndent()
			p.write("elif ")
			p.printExpr(nested.Condition, 0, false)
			p.printBlock(nested.Then)
			n = nested
			continue
		}
		p.writeIndent()
		p.write("else")
		p.printBlock(n.Else)
		break
	}
}

func (p *CodePrinter) VisitWhileStmt(n *ast.WhileStmt) {
	p.write("while ")
	p.printExpr(n.Condition, 0, false)
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitForStmt(n *ast.ForStmt) {
	p.write("for ")
	p.printTarget(n.Target)
	p.write(" in ")
	p.printExpr(n.Iter, 0, false)
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitTryStmt(n *ast.TryStmt) {
	p.write("try")
	p.printBlock(n.Body)
	for _, h := range n.Handlers {
		p.writeIndent()
		p.write("except")
		switch len(h.Types) {
		case 0:
		case 1:
			p.write(" ")
			p.printType(h.Types[0])
		default:
			p.write(" (")
			for i, t := range h.Types {
				if i > 0 {
					p.write(", ")
				}
				p.printType(t)
			}
			p.write(")")
		}
		if h.Name != nil {
			p.write(" as ")
			h.Name.Accept(p)
		}
		p.printBlock(h.Body)
	}
	if len(n.Else) > 0 {
		p.writeIndent()
		p.write("else")
		p.printBlock(n.Else)
	}
	if len(n.Finally) > 0 {
		p.writeIndent()
		p.write("finally")
		p.printBlock(n.Finally)
	}
}

func (p *CodePrinter) VisitRaiseStmt(n *ast.RaiseStmt) {
	p.write("raise")
	if n.Exception != nil {
		p.write(" ")
		p.printExpr(n.Exception, 0, false)
	}
	p.writeln()
}

func (p *CodePrinter) VisitMatchStmt(n *ast.MatchStmt) {
	p.write("match ")
	p.printExpr(n.Subject, 0, false)
	p.write(":")
	p.writeln()
	p.indent++
	for _, c := range n.Cases {
		p.writeIndent()
		p.write("case ")
		c.Pattern.Accept(p)
		if c.Guard != nil {
			p.write(" if ")
			p.printExpr(c.Guard, 0, false)
		}
		p.printBlock(c.Body)
	}
	p.indent--
}

func (p *CodePrinter) VisitPassStmt(n *ast.PassStmt) {
	p.write("pass")
	p.writeln()
}

func (p *CodePrinter) VisitBreakStmt(n *ast.BreakStmt) {
	p.write("break")
	p.writeln()
}

func (p *CodePrinter) VisitContinueStmt(n *ast.ContinueStmt) {
	p.write("continue")
	p.writeln()
}

// Expressions

func (p *CodePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	p.write(strconv.FormatInt(n.Value, 10))
}

func (p *CodePrinter) VisitFloatLiteral(n *ast.FloatLiteral) {
	s := strconv.FormatFloat(n.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	p.write(s)
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write(strconv.Quote(n.Value))
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	if n.Value {
		p.write("True")
	} else {
		p.write("False")
	}
}

func (p *CodePrinter) VisitNoneLiteral(n *ast.NoneLiteral) {
	p.write("None")
}

func (p *CodePrinter) VisitBinaryExpr(n *ast.BinaryExpr) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitUnaryExpr(n *ast.UnaryExpr) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitCallExpr(n *ast.CallExpr) {
	p.printExpr(n.Callee, 100, false)
	p.write("(")
	p.printExprList(n.Args)
	p.write(")")
}

func (p *CodePrinter) VisitAttributeExpr(n *ast.AttributeExpr) {
	p.printExpr(n.Object, 100, false)
	p.write(".")
	n.Name.Accept(p)
}

func (p *CodePrinter) VisitSubscriptExpr(n *ast.SubscriptExpr) {
	p.printExpr(n.Object, 100, false)
	p.write("[")
	p.printExprList(n.Index)
	p.write("]")
}

func (p *CodePrinter) VisitLambdaExpr(n *ast.LambdaExpr) {
	p.write("lambda")
	if len(n.Params) > 0 {
		p.write(" ")
		p.printParams(n.Params)
	}
	p.write(": ")
	p.printExpr(n.Body, 0, false)
}

func (p *CodePrinter) VisitListLiteral(n *ast.ListLiteral) {
	p.write("[")
	p.printExprList(n.Elements)
	p.write("]")
}

func (p *CodePrinter) VisitSetLiteral(n *ast.SetLiteral) {
	if len(n.Elements) == 0 {
		p.write("set()")
		return
	}
	p.write("{")
	p.printExprList(n.Elements)
	p.write("}")
}

func (p *CodePrinter) VisitTupleLiteral(n *ast.TupleLiteral) {
	p.write("(")
	p.printExprList(n.Elements)
	if len(n.Elements) == 1 {
		p.write(",")
	}
	p.write(")")
}

func (p *CodePrinter) VisitDictLiteral(n *ast.DictLiteral) {
	p.write("{")
	for i, entry := range n.Entries {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(entry.Key, 0, false)
		p.write(": ")
		p.printExpr(entry.Value, 0, false)
	}
	p.write("}")
}

func (p *CodePrinter) VisitConditionalExpr(n *ast.ConditionalExpr) {
	p.printExpr(n.Then, 1, false)
	p.write(" if ")
	p.printExpr(n.Condition, 1, false)
	p.write(" else ")
	p.printExpr(n.Else, 0, false)
}

func (p *CodePrinter) VisitMatchExpr(n *ast.MatchExpr) {
	p.write("match ")
	p.printExpr(n.Subject, 0, false)
	p.write(" { ")
	for i, arm := range n.Arms {
		if i > 0 {
			p.write(", ")
		}
		p.write("case ")
		arm.Pattern.Accept(p)
		if arm.Guard != nil {
			p.write(" if ")
			p.printExpr(arm.Guard, 0, false)
		}
		p.write(" => ")
		p.printExpr(arm.Body, 0, false)
	}
	p.write(" }")
}

func (p *CodePrinter) VisitComprehension(n *ast.Comprehension) {
	opening, closing := "[", "]"
	if n.Kind != ast.ListComp {
		opening, closing = "{", "}"
	}
	p.write(opening)
	if n.Kind == ast.DictComp {
		p.printExpr(n.Key, 0, false)
		p.write(": ")
	}
	p.printExpr(n.Element, 0, false)
	for _, c := range n.Clauses {
		p.write(" for ")
		p.printTarget(c.Target)
		p.write(" in ")
		p.printExpr(c.Iter, 1, false)
		for _, cond := range c.Conditions {
			p.write(" if ")
			p.printExpr(cond, 1, false)
		}
	}
	p.write(closing)
}

// Types

func (p *CodePrinter) VisitNamedType(n *ast.NamedType) {
	p.write(n.String())
}

func (p *CodePrinter) VisitCallableType(n *ast.CallableType) {
	p.write(n.String())
}

func (p *CodePrinter) VisitUnionType(n *ast.UnionType) {
	p.write(n.String())
}

// Patterns

func (p *CodePrinter) VisitLiteralPattern(n *ast.LiteralPattern) {
	p.printExpr(n.Value, 0, false)
}

func (p *CodePrinter) VisitCapturePattern(n *ast.CapturePattern) {
	n.Name.Accept(p)
}

func (p *CodePrinter) VisitWildcardPattern(n *ast.WildcardPattern) { p.write("_") }

func (p *CodePrinter) VisitTuplePattern(n *ast.TuplePattern) {
	p.write("(")
	for i, el := range n.Elements {
		if i > 0 {
			p.write(", ")
		}
		el.Accept(p)
	}
	if len(n.Elements) == 1 {
		p.write(",")
	}
	p.write(")")
}

func (p *CodePrinter) VisitClassPattern(n *ast.ClassPattern) {
	n.Class.Accept(p)
	p.write("(")
	for i, f := range n.Fields {
		if i > 0 {
			p.write(", ")
		}
		f.Name.Accept(p)
		p.write("=")
		f.Pattern.Accept(p)
	}
	p.write(")")
}
