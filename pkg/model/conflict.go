package model

// ConflictPart is one side of a conflict
type ConflictPart struct {
	Value TreeValue `json:"value" yaml:"value"`
	_     struct{}
}

// ConflictDescriptor is the persisted form of an unresolved conflict.
//
// A typical 3-way merge conflict has one remove (the common base) and two adds (both sides).
type ConflictDescriptor struct {
	Removes []ConflictPart `json:"removes" yaml:"removes"`
	Adds    []ConflictPart `json:"adds" yaml:"adds"`
	_       struct{}
}
