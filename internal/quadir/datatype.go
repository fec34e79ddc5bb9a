package quadir

import "strings"

// DataType is a recursively defined type: a name, a size in bytes, and an
// optional points-to link to another DataType. Instances are interned: two
// requests describing the same (name, size, pointsTo) shape return the
// identical pointer, so copying a *DataType is a pointer copy and equality
// is pointer equality, with no hand-written deep-copy constructor needed.
type DataType struct {
	Name     string
	Size     int
	PointsTo *DataType
}

var internTable = map[string]*DataType{}

// Int is the terminal, non-pointer 4-byte integer type.
var Int = intern("int", 4, nil)

func intern(name string, size int, pointsTo *DataType) *DataType {
	key := name
	if pointsTo != nil {
		key = name + "->" + pointsTo.key()
	}
	if dt, ok := internTable[key]; ok {
		return dt
	}
	dt := &DataType{Name: name, Size: size, PointsTo: pointsTo}
	internTable[key] = dt
	return dt
}

func (t *DataType) key() string {
	if t.PointsTo == nil {
		return t.Name
	}
	return t.Name + "->" + t.PointsTo.key()
}

// PointerTo returns the interned pointer-to-elem type.
func PointerTo(elem *DataType) *DataType {
	return intern("ptr", 8, elem)
}

// FinalPointsTo walks the points-to chain to the terminal non-pointer type.
func (t *DataType) FinalPointsTo() *DataType {
	cur := t
	for cur.PointsTo != nil {
		cur = cur.PointsTo
	}
	return cur
}

// Depth returns the pointer chain's length (0 for a non-pointer type).
func (t *DataType) Depth() int {
	d := 0
	for cur := t; cur.PointsTo != nil; cur = cur.PointsTo {
		d++
	}
	return d
}

func (t *DataType) IsPointer() bool { return t.PointsTo != nil }

func (t *DataType) String() string {
	if t.PointsTo == nil {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(t.FinalPointsTo().Name)
	for cur := t; cur.PointsTo != nil; cur = cur.PointsTo {
		b.WriteByte('*')
	}
	return b.String()
}
