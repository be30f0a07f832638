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

	"github.com/spaolacci/murmur3"
)

/*

Hasher maps keys onto ring addresses. It must be deterministic and
distribute outputs near-uniformly over the 64-bit space, naive string
hashing clusters badly.
*/
type Hasher func(key string) uint64

// Murmur3 is the default Hasher, MurmurHash3 over the UTF-8 key
func Murmur3(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

/*

Frequency is the weight a node actually holds on the ring,
the number of tokens it owns.
*/
type Frequency[T comparable] struct {
	Node  T
	Count int
}

func (f Frequency[T]) String() string {
	return fmt.Sprintf("{%v | %d}", f.Node, f.Count)
}
