package quadir

import "fmt"

// Value is a Quad operand: one of Const, Temp, Variable, HardcodedRegister.
type Value interface {
	isValue()
	Size() int
	String() string
}

// Const is a literal integer operand.
type Const struct{ Int int32 }

func (Const) isValue()         {}
func (c Const) Size() int      { return 4 }
func (c Const) String() string { return fmt.Sprintf("%d", c.Int) }

// Temp is a Quad-level temporary, minted once per new_temp call and
// totally ordered by ID.
type Temp struct {
	ID uint32
	Sz uint8
}

func (Temp) isValue()         {}
func (t Temp) Size() int      { return int(t.Sz) }
func (t Temp) String() string { return fmt.Sprintf("t%d", t.ID) }

// Variable refers to a named local. Version increases each time the name
// is (re)defined; semantics key on Name, Version is informational.
type Variable struct {
	Name    string
	Version uint32
	Sz      uint8
}

func (Variable) isValue()         {}
func (v Variable) Size() int      { return int(v.Sz) }
func (v Variable) String() string { return v.Name }

// HardcodedRegister references a specific physical register, used only
// when an operation must land in a calling-convention slot.
type HardcodedRegister struct {
	Base BaseRegister
	Sz   uint8
}

func (HardcodedRegister) isValue()         {}
func (h HardcodedRegister) Size() int      { return int(h.Sz) }
func (h HardcodedRegister) String() string { return h.Base.String() }
