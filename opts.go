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
	"fmt"
)

// Option for the ring structure
type Option[T comparable] func(ring *Ring[T])

// WithHash configures hashing algorithm for the ring
func WithHash[T comparable](hasher Hasher) Option[T] {
	return func(ring *Ring[T]) { ring.hasher = hasher }
}

// WithReplicas configures the weight claimed by a node on Join
func WithReplicas[T comparable](n int) Option[T] {
	return func(ring *Ring[T]) { ring.replicas = n }
}

/*

WithStringer configures the node identity function, used to derive
token salts. The identity must be stable across process runs for the
same logical node.
*/
func WithStringer[T comparable](f func(T) string) Option[T] {
	return func(ring *Ring[T]) { ring.stringer = f }
}

// WithRing clones ring configuration into the new instance
func WithRing[T comparable](r *Ring[T]) Option[T] {
	return func(ring *Ring[T]) {
		ring.hasher = r.hasher
		ring.replicas = r.replicas
		ring.stringer = r.stringer
	}
}

// Options turns a list of Option instances into an Option.
func Options[T comparable](opts ...Option[T]) Option[T] {
	return func(ring *Ring[T]) {
		for _, opt := range opts {
			opt(ring)
		}
	}
}

// Default ring configuration, MurmurHash3 and 20 tokens per node
func Default[T comparable]() Option[T] {
	return Options(
		WithHash[T](Murmur3),
		WithReplicas[T](20),
		WithStringer(func(node T) string { return fmt.Sprint(node) }),
	)
}
