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

package analysis_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"net"
	"testing"

	"github.com/fogfish/hashring"
	"github.com/montanaflynn/stats"
)

func randKey(rnd *rand.Rand) string {
	buf := make([]byte, 4)
	ip := rnd.Uint32()
	binary.LittleEndian.PutUint32(buf, ip)
	return net.IP(buf).String()
}

func randKeys(rnd *rand.Rand, n int) []string {
	seq := make([]string, n)
	for i := 0; i < n; i++ {
		seq[i] = randKey(rnd)
	}
	return seq
}

// joining a node remaps roughly its token share of the key space,
// and every remapped key moves to the new node
func TestFactorRemap(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x5eed))
	n := 16
	w := 64
	s := 20000
	ex := 6

	data := make([]float64, ex)
	for i := 0; i < ex; i++ {
		r := hashring.New(hashring.WithReplicas[string](w))
		for _, node := range randKeys(rnd, n) {
			r = r.Join(node)
		}

		joined := fmt.Sprintf("node-%d", i)
		v := r.Join(joined)

		moved := 0
		for _, key := range randKeys(rnd, s) {
			before, _ := r.Locate(key)
			after, _ := v.Locate(key)

			if before != after {
				moved++
				if after != joined {
					t.Errorf("key %s moved to %s, not to the joined node", key, after)
				}
			}
		}
		data[i] = float64(moved) / float64(s)
	}

	share := float64(w) / float64((n+1)*w)
	mean, _ := stats.Mean(data)

	if mean < share/2 || mean > share*2 {
		t.Errorf("remapped fraction %.4f, expected about %.4f", mean, share)
	}
}

// traffic split follows token weights
func TestFactorWeighting(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x5eed))
	s := 100000

	r := hashring.New[string]().
		Update("small", 100).
		Update("medium", 200).
		Update("large", 400)

	hits := map[string]int{}
	for _, key := range randKeys(rnd, s) {
		node, _ := r.Locate(key)
		hits[node]++
	}

	total := float64(r.Length())
	for _, f := range r.Frequencies() {
		share := float64(f.Count) / total
		load := float64(hits[f.Node]) / float64(s)

		if math.Abs(load-share) > share/2 {
			t.Errorf("node %s load %.4f, token share %.4f", f.Node, load, share)
		}
	}
}

// equal weights yield an even spread, low variance across nodes
func TestFactorLoadBalancing(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x5eed))
	n := 32
	s := 100000

	r := hashring.New(hashring.WithReplicas[string](128))
	for _, node := range randKeys(rnd, n) {
		r = r.Join(node)
	}

	hits := map[string]float64{}
	for _, key := range randKeys(rnd, s) {
		node, _ := r.Locate(key)
		hits[node]++
	}

	seq := make([]float64, 0, n)
	for _, v := range hits {
		seq = append(seq, v/float64(s)*100)
	}

	mean, _ := stats.Mean(seq)
	sd, _ := stats.StandardDeviation(seq)
	p2, _ := stats.Percentile(seq, 25.0)
	p9, _ := stats.Percentile(seq, 99.0)
	fmt.Printf("n=%d | %.2f %.2f %.2f %.2f\n", n, p2, mean, sd, p9)

	if len(hits) != n {
		t.Errorf("only %d of %d nodes received traffic", len(hits), n)
	}
	if sd/mean > 0.5 {
		t.Errorf("load spread too wide, cv=%.2f", sd/mean)
	}
}

// replica lists stay disjoint and stable in size
func TestFactorReplicaPlacement(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x5eed))
	n := 16
	x := 3
	s := 10000

	r := hashring.New(hashring.WithReplicas[string](64))
	for _, node := range randKeys(rnd, n) {
		r = r.Join(node)
	}

	data := make([]map[string]float64, x)
	for i := 0; i < x; i++ {
		data[i] = map[string]float64{}
	}

	for _, key := range randKeys(rnd, s) {
		nodes, _ := r.LocateN(key, x)
		if len(nodes) != x {
			t.Fatalf("expected %d replicas, got %d", x, len(nodes))
		}

		seen := map[string]bool{}
		for k, v := range nodes {
			if seen[v] {
				t.Fatalf("duplicate node %s in replica list", v)
			}
			seen[v] = true
			data[k][v]++
		}
	}

	for k, d := range data {
		seq := []float64{}
		for _, v := range d {
			seq = append(seq, v/float64(s)*100)
		}

		mean, _ := stats.Mean(seq)
		sd, _ := stats.StandardDeviation(seq)
		fmt.Printf("r=%d | %.2f %.2f\n", k, mean, sd)
	}
}
