package stackcalc

import "strings"

// EntryKind is the kind of a symbol table entry.
type EntryKind int8

const (
	// EntryVariable is variable storage.
	EntryVariable EntryKind = iota + 1
	// EntryOperation is a builtin operation.
	EntryOperation
	// EntrySubroutine is a user-defined subroutine.
	EntrySubroutine
	// EntryTransform is a handle to a function from a transform library,
	// which supports exact calculus.
	EntryTransform
)

func (k EntryKind) String() string {
	switch k {
	case EntryVariable:
		return "variable"
	case EntryOperation:
		return "operation"
	case EntrySubroutine:
		return "subroutine"
	case EntryTransform:
		return "transform"
	default:
		return "entry"
	}
}

// Entry is a named symbol.
type Entry[T any] struct {
	Name string
	Kind EntryKind
	// Value is the value of a variable.
	Value Value[T]
	// Op is the operation invoked for operations, subroutines, and
	// transforms.
	Op *Operation[T]
	// Sub is the subroutine of a subroutine entry.
	Sub *Subroutine[T]
	// Fn is the transform of a transform entry.
	Fn Transform[T]
}

// Describe formats the entry for listing.
func (ent *Entry[T]) Describe(a Arith[T]) string {
	switch ent.Kind {
	case EntryVariable:
		return ent.Value.Format(a)
	case EntrySubroutine:
		return ent.Sub.Profile()
	case EntryTransform:
		return ent.Fn.Describe(a)
	default:
		return ent.Op.Kind.String()
	}
}

// SymbolTable maps names to entries. Lookups that miss continue through the
// parent table. A table never modifies its parent.
//
// A SymbolTable is not safe for concurrent use. One which is shared between
// concurrent evaluations must only be used as the read-only parent of their
// tables.
type SymbolTable[T any] struct {
	parent  *SymbolTable[T]
	entries map[string]*Entry[T]
}

// NewSymbolTable creates an empty table with the given parent, which may be
// nil.
func NewSymbolTable[T any](parent *SymbolTable[T]) *SymbolTable[T] {
	return &SymbolTable[T]{parent: parent, entries: make(map[string]*Entry[T])}
}

// Parent returns the table's parent, or nil if it is a root.
func (s *SymbolTable[T]) Parent() *SymbolTable[T] {
	return s.parent
}

// Add binds an entry in s, replacing any entry of the same name in s and
// shadowing any in its ancestors.
func (s *SymbolTable[T]) Add(ent *Entry[T]) {
	s.entries[ent.Name] = ent
}

// Lookup finds the entry for name in s or its nearest ancestor.
func (s *SymbolTable[T]) Lookup(name string) (*Entry[T], bool) {
	for t := s; t != nil; t = t.parent {
		if ent, ok := t.entries[name]; ok {
			return ent, true
		}
	}
	return nil, false
}

// Local finds the entry for name in s only.
func (s *SymbolTable[T]) Local(name string) (*Entry[T], bool) {
	ent, ok := s.entries[name]
	return ent, ok
}

// Remove deletes name from s. Entries in ancestors are unaffected. Returns
// whether there was an entry to remove.
func (s *SymbolTable[T]) Remove(name string) bool {
	_, ok := s.entries[name]
	delete(s.entries, name)
	return ok
}

// Fork creates an empty child of s.
func (s *SymbolTable[T]) Fork() *SymbolTable[T] {
	return NewSymbolTable(s)
}

// Import copies the entry visible as name in src into s. It returns false if
// src has no such entry.
func (s *SymbolTable[T]) Import(src *SymbolTable[T], name string) bool {
	ent, ok := src.Lookup(name)
	if !ok {
		return false
	}
	cp := *ent
	s.entries[name] = &cp
	return true
}

// Names returns the sorted names visible from s, including inherited ones.
func (s *SymbolTable[T]) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for t := s; t != nil; t = t.parent {
		for k := range t.entries {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sortstrs(names)
	return names
}

// Entries returns the entries visible from s, sorted by name. Entries of a
// parent shadowed by s are omitted. If kinds are given, only entries of
// those kinds are returned.
func (s *SymbolTable[T]) Entries(kinds ...EntryKind) []*Entry[T] {
	names := s.Names()
	r := make([]*Entry[T], 0, len(names))
	for _, name := range names {
		ent, _ := s.Lookup(name)
		if len(kinds) == 0 || hasKind(kinds, ent.Kind) {
			r = append(r, ent)
		}
	}
	return r
}

func hasKind(kinds []EntryKind, k EntryKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && strings.Compare(names[j], names[j-1]) < 0; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
