package analysis

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// BetweennessMode specifies how betweenness centrality is computed.
type BetweennessMode string

const (
	// BetweennessExact runs Brandes' algorithm from every person. O(V*E).
	BetweennessExact BetweennessMode = "exact"

	// BetweennessApproximate runs it from a random sample of k people and
	// scales the result by n/k. Error is about 1/sqrt(k).
	BetweennessApproximate BetweennessMode = "approximate"
)

// BetweennessResult holds centrality scores keyed by person id.
type BetweennessResult struct {
	Scores     map[string]float64
	Mode       BetweennessMode
	SampleSize int
	TotalNodes int
	Elapsed    time.Duration
}

// brandesBuffers holds the per-source state of one BFS; they are pooled so
// parallel pivots do not allocate per run.
type brandesBuffers struct {
	sigma     map[int64]float64 // shortest path counts
	dist      map[int64]int     // BFS distance, -1 = unvisited
	delta     map[int64]float64 // dependency accumulation
	pred      map[int64][]int64 // predecessors on shortest paths
	queue     []int64
	stack     []int64
	neighbors []int64
}

var brandesPool = sync.Pool{
	New: func() interface{} {
		return &brandesBuffers{
			sigma:     make(map[int64]float64, 256),
			dist:      make(map[int64]int, 256),
			delta:     make(map[int64]float64, 256),
			pred:      make(map[int64][]int64, 256),
			queue:     make([]int64, 0, 256),
			stack:     make([]int64, 0, 256),
			neighbors: make([]int64, 0, 32),
		}
	},
}

func (b *brandesBuffers) reset(nodes []graph.Node) {
	if len(b.sigma) > len(nodes)*2 {
		clear(b.sigma)
		clear(b.dist)
		clear(b.delta)
		clear(b.pred)
	}
	for _, n := range nodes {
		nid := n.ID()
		b.sigma[nid] = 0
		b.dist[nid] = -1
		b.delta[nid] = 0
		if existing, ok := b.pred[nid]; ok {
			b.pred[nid] = existing[:0]
		} else {
			b.pred[nid] = make([]int64, 0, 4)
		}
	}
	b.queue = b.queue[:0]
	b.stack = b.stack[:0]
	b.neighbors = b.neighbors[:0]
}

// Betweenness scores how many reporting paths run through each person. Graphs
// no larger than sampleSize are scored exactly.
func (a *Analyzer) Betweenness(sampleSize int, seed int64) BetweennessResult {
	start := time.Now()
	res := approxBetweenness(a.g, sampleSize, seed)
	out := BetweennessResult{
		Scores:     make(map[string]float64, len(res)),
		Mode:       BetweennessApproximate,
		SampleSize: sampleSize,
		TotalNodes: a.NodeCount(),
	}
	if sampleSize < 1 || sampleSize >= a.NodeCount() {
		out.Mode = BetweennessExact
		out.SampleSize = a.NodeCount()
	}
	for id, v := range res {
		out.Scores[a.nodeToID[id]] = v
	}
	out.Elapsed = time.Since(start)
	return out
}

func approxBetweenness(g *simple.DirectedGraph, sampleSize int, seed int64) map[int64]float64 {
	nodes := graph.NodesOf(g.Nodes())
	n := len(nodes)
	if n == 0 {
		return map[int64]float64{}
	}
	// gonum's node iteration order is map-backed
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })

	if sampleSize < 1 || sampleSize >= n {
		return network.Betweenness(g)
	}

	pivots := sampleNodes(nodes, sampleSize, seed)

	partial := make(map[int64]float64)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())

	for _, pivot := range pivots {
		wg.Add(1)
		go func(p graph.Node) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			local := make(map[int64]float64)
			singleSourceBetweenness(g, nodes, p, local)

			mu.Lock()
			for id, val := range local {
				partial[id] += val
			}
			mu.Unlock()
		}(pivot)
	}
	wg.Wait()

	scale := float64(n) / float64(sampleSize)
	for id := range partial {
		partial[id] *= scale
	}
	return partial
}

// sampleNodes picks k nodes with a partial Fisher-Yates shuffle.
func sampleNodes(nodes []graph.Node, k int, seed int64) []graph.Node {
	if k >= len(nodes) {
		return nodes
	}
	shuffled := make([]graph.Node, len(nodes))
	copy(shuffled, nodes)

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k]
}

// singleSourceBetweenness adds the dependency of source on every other node
// to bc.
func singleSourceBetweenness(g *simple.DirectedGraph, nodes []graph.Node, source graph.Node, bc map[int64]float64) {
	sourceID := source.ID()

	buf := brandesPool.Get().(*brandesBuffers)
	defer brandesPool.Put(buf)
	buf.reset(nodes)

	sigma, dist, delta, pred := buf.sigma, buf.dist, buf.delta, buf.pred
	sigma[sourceID] = 1
	dist[sourceID] = 0
	buf.queue = append(buf.queue, sourceID)

	for len(buf.queue) > 0 {
		v := buf.queue[0]
		buf.queue = buf.queue[1:]
		buf.stack = append(buf.stack, v)

		buf.neighbors = buf.neighbors[:0]
		to := g.From(v)
		for to.Next() {
			buf.neighbors = append(buf.neighbors, to.Node().ID())
		}
		sort.Slice(buf.neighbors, func(i, j int) bool { return buf.neighbors[i] < buf.neighbors[j] })

		for _, w := range buf.neighbors {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				buf.queue = append(buf.queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	for i := len(buf.stack) - 1; i >= 0; i-- {
		w := buf.stack[i]
		if w == sourceID {
			continue
		}
		for _, v := range pred[w] {
			if sigma[w] > 0 {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
		}
		bc[w] += delta[w]
	}
}

// RecommendSampleSize returns an exact run for small organisations and a
// bounded sample for large ones.
func RecommendSampleSize(nodeCount int) int {
	switch {
	case nodeCount < 100:
		return nodeCount
	case nodeCount < 500:
		if s := nodeCount / 5; s > 50 {
			return s
		}
		return 50
	case nodeCount < 2000:
		return 100
	default:
		return 200
	}
}
