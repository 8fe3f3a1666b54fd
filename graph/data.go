package graph

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// DataGraph is a large sparse host graph, loaded from an edge list.
// Vertex ids from the file are remapped to 0..N()-1 in order of first appearance.
type DataGraph struct {
	neighbours [][]int
	edges      int
}

func NewDataGraph(n int) *DataGraph {
	return &DataGraph{neighbours: make([][]int, n)}
}

// AddEdge records an undirected edge. Self loops and repeated edges are ignored.
func (d *DataGraph) AddEdge(u, v int) {
	if u == v || d.HasEdge(u, v) {
		return
	}
	d.neighbours[u] = insertSorted(d.neighbours[u], v)
	d.neighbours[v] = insertSorted(d.neighbours[v], u)
	d.edges++
}

func insertSorted(s []int, x int) []int {
	i, _ := slices.BinarySearch(s, x)
	return slices.Insert(s, i, x)
}

func (d *DataGraph) N() int { return len(d.neighbours) }

func (d *DataGraph) NumEdges() int { return d.edges }

func (d *DataGraph) Degree(v int) int { return len(d.neighbours[v]) }

func (d *DataGraph) Neighbors(v int) []int { return d.neighbours[v] }

func (d *DataGraph) HasEdge(u, v int) bool {
	if u < 0 || u >= len(d.neighbours) {
		return false
	}
	_, found := slices.BinarySearch(d.neighbours[u], v)
	return found
}

// ReadEdgeList parses whitespace separated "u v" lines. Blank lines and lines starting with '#'
// or '%' are skipped, and any columns after the first two are ignored.
func ReadEdgeList(r io.Reader) (*DataGraph, error) {
	ids := map[string]int{}
	var pairs [][2]int
	index := func(label string) int {
		if i, ok := ids[label]; ok {
			return i
		}
		ids[label] = len(ids)
		return ids[label]
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("edge list line %d: expected two vertex ids, got %q", lineNo, line)
		}
		for _, f := range fields[:2] {
			if _, err := strconv.ParseUint(f, 10, 64); err != nil {
				return nil, fmt.Errorf("edge list line %d: invalid vertex id %q", lineNo, f)
			}
		}
		pairs = append(pairs, [2]int{index(fields[0]), index(fields[1])})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	d := NewDataGraph(len(ids))
	for _, p := range pairs {
		d.AddEdge(p[0], p[1])
	}
	return d, nil
}

// WriteEdgeList writes one "u v" line per edge, with u < v.
func (d *DataGraph) WriteEdgeList(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for u, ns := range d.neighbours {
		for _, v := range ns {
			if u < v {
				if _, err := fmt.Fprintf(bw, "%d %d\n", u, v); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}
