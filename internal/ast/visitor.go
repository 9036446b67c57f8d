package ast

// Visitor has one method per concrete node type. Statements dispatch through
// Accept; the analyzer implements the statement half and switches on
// expression types directly.
type Visitor interface {
	VisitProgram(node *Program)
	VisitIdentifier(node *Identifier)

	// Statements
	VisitClassDef(node *ClassDef)
	VisitFunctionDef(node *FunctionDef)
	VisitTypeAliasStmt(node *TypeAliasStmt)
	VisitImportFromStmt(node *ImportFromStmt)
	VisitAssignStmt(node *AssignStmt)
	VisitAugAssignStmt(node *AugAssignStmt)
	VisitExpressionStmt(node *ExpressionStmt)
	VisitReturnStmt(node *ReturnStmt)
	VisitIfStmt(node *IfStmt)
	VisitWhileStmt(node *WhileStmt)
	VisitForStmt(node *ForStmt)
	VisitTryStmt(node *TryStmt)
	VisitRaiseStmt(node *RaiseStmt)
	VisitMatchStmt(node *MatchStmt)
	VisitPassStmt(node *PassStmt)
	VisitBreakStmt(node *BreakStmt)
	VisitContinueStmt(node *ContinueStmt)

	// Expressions
	VisitIntegerLiteral(node *IntegerLiteral)
	VisitFloatLiteral(node *FloatLiteral)
	VisitStringLiteral(node *StringLiteral)
	VisitBooleanLiteral(node *BooleanLiteral)
	VisitNoneLiteral(node *NoneLiteral)
	VisitBinaryExpr(node *BinaryExpr)
	VisitUnaryExpr(node *UnaryExpr)
	VisitCallExpr(node *CallExpr)
	VisitAttributeExpr(node *AttributeExpr)
	VisitSubscriptExpr(node *SubscriptExpr)
	VisitLambdaExpr(node *LambdaExpr)
	VisitListLiteral(node *ListLiteral)
	VisitSetLiteral(node *SetLiteral)
	VisitTupleLiteral(node *TupleLiteral)
	VisitDictLiteral(node *DictLiteral)
	VisitConditionalExpr(node *ConditionalExpr)
	VisitMatchExpr(node *MatchExpr)
	VisitComprehension(node *Comprehension)

	// Types
	VisitNamedType(node *NamedType)
	VisitCallableType(node *CallableType)
	VisitUnionType(node *UnionType)

	// Patterns
	VisitLiteralPattern(node *LiteralPattern)
	VisitCapturePattern(node *CapturePattern)
	VisitWildcardPattern(node *WildcardPattern)
	VisitTuplePattern(node *TuplePattern)
	VisitClassPattern(node *ClassPattern)
}

// BaseVisitor implements every Visitor method as a no-op. Embed it to handle
// only the nodes a pass cares about.
type BaseVisitor struct{}

func (BaseVisitor) VisitProgram(*Program)                 {}
func (BaseVisitor) VisitIdentifier(*Identifier)           {}
func (BaseVisitor) VisitClassDef(*ClassDef)               {}
func (BaseVisitor) VisitFunctionDef(*FunctionDef)         {}
func (BaseVisitor) VisitTypeAliasStmt(*TypeAliasStmt)     {}
func (BaseVisitor) VisitImportFromStmt(*ImportFromStmt)   {}
func (BaseVisitor) VisitAssignStmt(*AssignStmt)           {}
func (BaseVisitor) VisitAugAssignStmt(*AugAssignStmt)     {}
func (BaseVisitor) VisitExpressionStmt(*ExpressionStmt)   {}
func (BaseVisitor) VisitReturnStmt(*ReturnStmt)           {}
func (BaseVisitor) VisitIfStmt(*IfStmt)                   {}
func (BaseVisitor) VisitWhileStmt(*WhileStmt)             {}
func (BaseVisitor) VisitForStmt(*ForStmt)                 {}
func (BaseVisitor) VisitTryStmt(*TryStmt)                 {}
func (BaseVisitor) VisitRaiseStmt(*RaiseStmt)             {}
func (BaseVisitor) VisitMatchStmt(*MatchStmt)             {}
func (BaseVisitor) VisitPassStmt(*PassStmt)               {}
func (BaseVisitor) VisitBreakStmt(*BreakStmt)             {}
func (BaseVisitor) VisitContinueStmt(*ContinueStmt)       {}
func (BaseVisitor) VisitIntegerLiteral(*IntegerLiteral)   {}
func (BaseVisitor) VisitFloatLiteral(*FloatLiteral)       {}
func (BaseVisitor) VisitStringLiteral(*StringLiteral)     {}
func (BaseVisitor) VisitBooleanLiteral(*BooleanLiteral)   {}
func (BaseVisitor) VisitNoneLiteral(*NoneLiteral)         {}
func (BaseVisitor) VisitBinaryExpr(*BinaryExpr)           {}
func (BaseVisitor) VisitUnaryExpr(*UnaryExpr)             {}
func (BaseVisitor) VisitCallExpr(*CallExpr)               {}
func (BaseVisitor) VisitAttributeExpr(*AttributeExpr)     {}
func (BaseVisitor) VisitSubscriptExpr(*SubscriptExpr)     {}
func (BaseVisitor) VisitLambdaExpr(*LambdaExpr)           {}
func (BaseVisitor) VisitListLiteral(*ListLiteral)         {}
func (BaseVisitor) VisitSetLiteral(*SetLiteral)           {}
func (BaseVisitor) VisitTupleLiteral(*TupleLiteral)       {}
func (BaseVisitor) VisitDictLiteral(*DictLiteral)         {}
func (BaseVisitor) VisitConditionalExpr(*ConditionalExpr) {}
func (BaseVisitor) VisitMatchExpr(*MatchExpr)             {}
func (BaseVisitor) VisitComprehension(*Comprehension)     {}
func (BaseVisitor) VisitNamedType(*NamedType)             {}
func (BaseVisitor) VisitCallableType(*CallableType)       {}
func (BaseVisitor) VisitUnionType(*UnionType)             {}
func (BaseVisitor) VisitLiteralPattern(*LiteralPattern)   {}
func (BaseVisitor) VisitCapturePattern(*CapturePattern)   {}
func (BaseVisitor) VisitWildcardPattern(*WildcardPattern) {}
func (BaseVisitor) VisitTuplePattern(*TuplePattern)       {}
func (BaseVisitor) VisitClassPattern(*ClassPattern)       {}
