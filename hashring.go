/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package hashring

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyRing is returned by lookups against a ring that holds no tokens.
var ErrEmptyRing = errors.New("hashring: empty ring")

/*

Ring is an immutable, weighted consistent hashing data type.

Each node claims a configurable number of tokens on the ring; a key is
routed to the node owning the closest token at-or-after the key address,
wrapping around the ring. Join, Update and Leave derive a new ring and
never touch the receiver, so any number of goroutines may share a ring
without coordination.
*/
type Ring[T comparable] struct {
	// configuration
	hasher   Hasher         // hashing algorithm, string to ring address
	replicas int            // tokens claimed by a node on Join
	stringer func(T) string // stable node identity used for token salts

	// internal state
	tokens []uint64     // sorted ring addresses
	ring   map[uint64]T // ring address to owner
}

// New creates an empty instance of the ring
func New[T comparable](opts ...Option[T]) *Ring[T] {
	ring := &Ring[T]{ring: map[uint64]T{}}

	Default[T]()(ring)
	for _, opt := range opts {
		opt(ring)
	}

	return ring
}

// Of builds the ring by joining nodes one by one at the default weight.
// Order matters only if token addresses collide, the later node wins.
func Of[T comparable](nodes ...T) *Ring[T] {
	ring := New[T]()
	for _, node := range nodes {
		ring = ring.Join(node)
	}
	return ring
}

/*

Restore rebuilds the ring from a previously captured token table,
e.g. one obtained while debugging a topology. Options configure the
hashing algorithm used for subsequent lookups and updates.
*/
func Restore[T comparable](tokens map[uint64]T, opts ...Option[T]) *Ring[T] {
	ring := New(opts...)
	for addr, node := range tokens {
		ring.ring[addr] = node
	}
	ring.index()
	return ring
}

//------------------------------------------------------------------------------
//
// Ring algebra
//
//------------------------------------------------------------------------------

// derive the ring value sharing config and token table with the receiver
func (ring *Ring[T]) clone() *Ring[T] {
	next := &Ring[T]{
		hasher:   ring.hasher,
		replicas: ring.replicas,
		stringer: ring.stringer,
		ring:     make(map[uint64]T, len(ring.ring)),
	}
	for addr, node := range ring.ring {
		next.ring[addr] = node
	}
	return next
}

// rebuild the sorted address index from the token table
func (ring *Ring[T]) index() {
	ring.tokens = make([]uint64, 0, len(ring.ring))
	for addr := range ring.ring {
		ring.tokens = append(ring.tokens, addr)
	}
	sort.Slice(ring.tokens, func(i, j int) bool {
		return ring.tokens[i] < ring.tokens[j]
	})
}

// calculate token address for the node replica
func (ring *Ring[T]) salt(node T, rank int) string {
	return ring.stringer(node) + "#" + strconv.Itoa(rank)
}

// calculate index of the token owning the address, wrapping around the ring
func (ring *Ring[T]) successor(addr uint64) int {
	i := sort.Search(len(ring.tokens), func(i int) bool {
		return ring.tokens[i] >= addr
	})
	if i == len(ring.tokens) {
		return 0
	}
	return i
}

//------------------------------------------------------------------------------
//
// Ring interface
//
//------------------------------------------------------------------------------

/*

Join node to the ring at the default weight. It returns a new ring,
the receiver is not modified.
*/
func (ring *Ring[T]) Join(node T) *Ring[T] {
	return ring.Update(node, ring.replicas)
}

/*

Update sets the weight of the node so that it owns exactly replicas
tokens, discarding tokens from any earlier weight. Zero (or negative)
replicas evicts the node entirely. It returns a new ring, the receiver
is not modified.
*/
func (ring *Ring[T]) Update(node T, replicas int) *Ring[T] {
	next := ring.clone()

	for addr, owner := range next.ring {
		if owner == node {
			delete(next.ring, addr)
		}
	}

	for rank := 0; rank < replicas; rank++ {
		// colliding addresses are rare, the later write wins
		next.ring[next.hasher(next.salt(node, rank))] = node
	}

	next.index()
	return next
}

/*

Leave node from the ring, releasing all of its tokens. Leaving a node
that never joined is a no-op. It returns a new ring, the receiver is
not modified.
*/
func (ring *Ring[T]) Leave(node T) *Ring[T] {
	return ring.Update(node, 0)
}

/*

Locate routes the key to its owner node, the node holding the closest
token at-or-after the key address on the ring. It fails with
ErrEmptyRing if no node claimed any token.
*/
func (ring *Ring[T]) Locate(key string) (T, error) {
	if len(ring.tokens) == 0 {
		var none T
		return none, ErrEmptyRing
	}

	return ring.ring[ring.tokens[ring.successor(ring.hasher(key))]], nil
}

/*

LocateN routes the key to n distinct nodes, walking the ring clockwise
from the key address. It returns fewer nodes if the ring members are
fewer than n, and fails with ErrEmptyRing on the empty ring.
*/
func (ring *Ring[T]) LocateN(key string, n int) ([]T, error) {
	if len(ring.tokens) == 0 {
		return nil, ErrEmptyRing
	}

	head := ring.successor(ring.hasher(key))
	seen := map[T]bool{}
	seq := make([]T, 0, n)

	for i := 0; i < len(ring.tokens) && len(seq) < n; i++ {
		node := ring.ring[ring.tokens[(head+i)%len(ring.tokens)]]
		if !seen[node] {
			seen[node] = true
			seq = append(seq, node)
		}
	}

	return seq, nil
}

/*

Count returns the number of tokens currently owned by the node,
0 if the node is not on the ring.
*/
func (ring *Ring[T]) Count(node T) int {
	count := 0
	for _, owner := range ring.ring {
		if owner == node {
			count++
		}
	}
	return count
}

/*

Has returns true if the node owns at least one token on the ring
*/
func (ring *Ring[T]) Has(node T) bool {
	for _, owner := range ring.ring {
		if owner == node {
			return true
		}
	}
	return false
}

// IsEmpty returns true if no node claimed any token
func (ring *Ring[T]) IsEmpty() bool {
	return len(ring.tokens) == 0
}

// Size of ring, number of distinct nodes owning tokens
func (ring *Ring[T]) Size() int {
	seen := map[T]bool{}
	for _, owner := range ring.ring {
		seen[owner] = true
	}
	return len(seen)
}

// Length of ring, total number of tokens claimed by all nodes
func (ring *Ring[T]) Length() int {
	return len(ring.tokens)
}

/*

Members return list of nodes owning tokens on the ring,
ordered by node identity.
*/
func (ring *Ring[T]) Members() []T {
	seen := map[T]bool{}
	nodes := make([]T, 0)
	for _, owner := range ring.ring {
		if !seen[owner] {
			seen[owner] = true
			nodes = append(nodes, owner)
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		return ring.stringer(nodes[i]) < ring.stringer(nodes[j])
	})
	return nodes
}

/*

Frequencies groups tokens by owner node, reporting the weight each node
actually holds on the ring. The sequence is ordered by node identity.
*/
func (ring *Ring[T]) Frequencies() []Frequency[T] {
	counts := map[T]int{}
	for _, owner := range ring.ring {
		counts[owner]++
	}

	seq := make([]Frequency[T], 0, len(counts))
	for node, count := range counts {
		seq = append(seq, Frequency[T]{Node: node, Count: count})
	}

	sort.Slice(seq, func(i, j int) bool {
		return ring.stringer(seq[i].Node) < ring.stringer(seq[j].Node)
	})
	return seq
}

/*

Debug represents ring to string snapshot
*/
func (ring *Ring[T]) Debug() string {
	buf := strings.Builder{}
	buf.WriteString(fmt.Sprintf("ring: nodes=%d, tokens=%d\n", ring.Size(), len(ring.tokens)))
	buf.WriteString("|     [ ")
	for _, node := range ring.Members() {
		buf.WriteString(ring.stringer(node))
		buf.WriteString(" ")
	}
	buf.WriteString("]\n| \n")

	for i, addr := range ring.tokens {
		buf.WriteString(fmt.Sprintf("| %5d", i))
		buf.WriteString(fmt.Sprintf(": %16x", addr))
		buf.WriteString(fmt.Sprintf(" [%s]", ring.stringer(ring.ring[addr])))
		buf.WriteString("\n")
	}
	return buf.String()
}
