package lang

// Source is the root of a parsed program.
type Source struct {
	Fields  []*Field
	Methods []*Method
}

// Method finds the method with the given name and arity.
func (s *Source) Method(name string, arity int) (*Method, bool) {
	for _, m := range s.Methods {
		if m.Name == name && len(m.Params) == arity {
			return m, true
		}
	}

	return nil, false
}

// Field is a module-level variable. Variable is resolved by analysis.
type Field struct {
	Value    Expr
	Variable *Variable
	Name     string
	TypeName string
}

// Method is a module-level function. ReturnType is empty when the method
// declares none. Function is resolved by analysis.
type Method struct {
	Function   *Function
	Name       string
	ReturnType string
	Params     []string
	ParamTypes []string
	Body       []Stmt
}

// Stmt is a statement node.
type Stmt interface{ stmt() }

type (
	// ExprStmt evaluates an expression for its side effects.
	ExprStmt struct {
		Expr Expr
	}

	// Declaration introduces a local variable. At least one of TypeName and
	// Value is required for analysis to succeed.
	Declaration struct {
		Value    Expr
		Variable *Variable
		Name     string
		TypeName string
	}

	// Assignment stores Value through Receiver, which must be an *Access.
	Assignment struct {
		Receiver Expr
		Value    Expr
	}

	// If executes Then when Cond holds and Else otherwise.
	If struct {
		Cond Expr
		Then []Stmt
		Else []Stmt
	}

	// For binds Name to each element of Iterable in turn.
	For struct {
		Iterable Expr
		Name     string
		Body     []Stmt
	}

	// While repeats Body while Cond holds.
	While struct {
		Cond Expr
		Body []Stmt
	}

	// Return leaves the enclosing method with Value.
	Return struct {
		Value Expr
	}
)

func (*ExprStmt) stmt()    {}
func (*Declaration) stmt() {}
func (*Assignment) stmt()  {}
func (*If) stmt()          {}
func (*For) stmt()         {}
func (*While) stmt()       {}
func (*Return) stmt()      {}

// Expr is an expression node. Type is nil until analysis resolves it.
type Expr interface {
	Type() *Type

	setType(t *Type)
}

type typed struct{ typ *Type }

func (t *typed) Type() *Type { return t.typ }

func (t *typed) setType(typ *Type) { t.typ = typ }

type (
	// Literal is a constant. Value is one of Nil, Bool, Int, Decimal, Char
	// or Str.
	Literal struct {
		typed

		Value Value
	}

	// Group is a parenthesized expression.
	Group struct {
		typed

		Inner Expr
	}

	// Binary applies Op to Left and Right.
	Binary struct {
		typed

		Left  Expr
		Right Expr
		Op    string
	}

	// Access reads a variable, either lexically or as a member of Receiver.
	// Variable is resolved by analysis.
	Access struct {
		typed

		Receiver Expr
		Variable *Variable
		Name     string
	}

	// Call invokes a function, either lexically or as a member of Receiver.
	// Function is resolved by analysis.
	Call struct {
		typed

		Receiver Expr
		Function *Function
		Name     string
		Args     []Expr
	}
)
