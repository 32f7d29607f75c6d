package kmerindex

// StartKmerList is C6: a per-worker, purely local singly-linked list of
// heap handles identifying traversal seeds (e.g. k-mers whose left
// extension is 'F' in UFX semantics). It is never shared across workers.
//
// StartKmerList is a value type: the empty list is the nil *startKmerNode,
// and Push returns the new head rather than mutating in place, so callers
// (notably Index.RegisterStart) simply reassign their copy.
type StartKmerList struct {
	head *startKmerNode
}

type startKmerNode struct {
	kmerIndex int64
	next      *startKmerNode
}

// Push prepends handle and returns the updated list, so the most recently
// registered seed is yielded first by Each (LIFO order).
func (l StartKmerList) Push(handle int64) StartKmerList {
	return StartKmerList{head: &startKmerNode{kmerIndex: handle, next: l.head}}
}

// Empty reports whether the list has no entries.
func (l StartKmerList) Empty() bool { return l.head == nil }

// Each calls f with every handle in the list, most recently pushed first,
// stopping early if f returns false.
func (l StartKmerList) Each(f func(handle int64) bool) {
	for n := l.head; n != nil; n = n.next {
		if !f(n.kmerIndex) {
			return
		}
	}
}

// Slice materializes the list into a LIFO-ordered slice (third pushed
// first, then second, then first, matching spec.md §8 scenario 6).
func (l StartKmerList) Slice() []int64 {
	var out []int64
	l.Each(func(h int64) bool {
		out = append(out, h)
		return true
	})
	return out
}
