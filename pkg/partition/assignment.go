package partition

import "strconv"

// District identifies a district. Valid districts are 1..n for a partition
// of n districts; there is no district 0.
type District int

// Assignment is the state of one unit: either [Unassigned] or assigned to a
// district. The zero value is Unassigned, so "no district" can never be
// mistaken for a real district id.
type Assignment struct {
	d District
}

// Unassigned is the assignment of a unit that belongs to no district yet.
var Unassigned = Assignment{}

// Assigned returns the assignment to district d. It panics if d < 1.
func Assigned(d District) Assignment {
	if d < 1 {
		panic("partition: district ids start at 1, got " + strconv.Itoa(int(d)))
	}
	return Assignment{d: d}
}

// District returns the assigned district and true, or 0 and false when unassigned.
func (a Assignment) District() (District, bool) {
	return a.d, a.d != 0
}

// IsAssigned reports whether the unit belongs to a district.
func (a Assignment) IsAssigned() bool { return a.d != 0 }

// String returns the district number, or "unassigned".
func (a Assignment) String() string {
	if a.d == 0 {
		return "unassigned"
	}
	return strconv.Itoa(int(a.d))
}
