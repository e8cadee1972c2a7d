package hashset

import (
	"sort"
	"strings"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
)

// HashSet is an unordered set of hashes, keyed by value
type HashSet map[externalapi.DomainHash]struct{}

// New returns an empty HashSet
func New() HashSet {
	return make(HashSet)
}

// NewWithCapacity returns an empty HashSet sized for capacity hashes
func NewWithCapacity(capacity int) HashSet {
	return make(HashSet, capacity)
}

// NewFromSlice returns a HashSet of hashes. Duplicates are stored once.
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := NewWithCapacity(len(hashes))
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// String lists the hashes in the set in lexicographical order
func (hs HashSet) String() string {
	hashStrings := make([]string, 0, len(hs))
	for hash := range hs {
		hashStrings = append(hashStrings, hash.String())
	}
	sort.Strings(hashStrings)
	return "[" + strings.Join(hashStrings, ", ") + "]"
}

func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

func (hs HashSet) Length() int {
	return len(hs)
}
