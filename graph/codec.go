package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteDIMACS writes g in the DIMACS edge format: a "p edge n m" header followed by one
// "e u v" line per edge, with 1-based vertex numbers.
func WriteDIMACS(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p edge %d %d\n", g.N(), g.NumEdges())
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "e %d %d\n", e[0]+1, e[1]+1)
	}
	return bw.Flush()
}

// ReadDIMACS parses a DIMACS edge file. Comment lines ("c ...") and vertex colour lines
// ("n ...") are skipped. Lines holding a single integer are returned as scalars, in order.
func ReadDIMACS(r io.Reader) (Graph, []int64, error) {
	var (
		g       Graph
		header  bool
		scalars []int64
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c", "n":
			continue
		case "p":
			if len(fields) != 4 || fields[1] != "edge" {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: malformed header", lineNo)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 || n > MaxVertices {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: invalid vertex count %q", lineNo, fields[2])
			}
			g = New(n)
			header = true
		case "e":
			if !header {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: edge before header", lineNo)
			}
			if len(fields) != 3 {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: malformed edge", lineNo)
			}
			u, errU := strconv.Atoi(fields[1])
			v, errV := strconv.Atoi(fields[2])
			if errU != nil || errV != nil || u < 1 || v < 1 || u > g.N() || v > g.N() || u == v {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: invalid edge", lineNo)
			}
			g.AddEdge(u-1, v-1)
		default:
			if len(fields) != 1 {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: unexpected %q", lineNo, fields[0])
			}
			x, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return Graph{}, nil, fmt.Errorf("dimacs line %d: unexpected %q", lineNo, fields[0])
			}
			scalars = append(scalars, x)
		}
	}
	if err := scanner.Err(); err != nil {
		return Graph{}, nil, err
	}
	if !header {
		return Graph{}, nil, fmt.Errorf("dimacs: missing header")
	}
	return g, scalars, nil
}

// WritePatternEdges writes one "u v" line per edge and one "u v 1" line per anti-edge, with
// 1-based vertex numbers. This is the pattern file format the counting tools read.
func WritePatternEdges(w io.Writer, p Pattern) error {
	bw := bufio.NewWriter(w)
	for _, e := range p.Edges.Edges() {
		fmt.Fprintf(bw, "%d %d\n", e[0]+1, e[1]+1)
	}
	for _, e := range p.Anti.Edges() {
		fmt.Fprintf(bw, "%d %d 1\n", e[0]+1, e[1]+1)
	}
	return bw.Flush()
}

// ReadPermutation parses a canonical labelling file of n lines "c i", meaning original vertex i
// (0-based) sits at canonical position c. The result maps original vertex to position.
func ReadPermutation(r io.Reader, n int) ([]int, error) {
	perm := make([]int, n)
	seenPos := make([]bool, n)
	seenVertex := make([]bool, n)
	count := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("permutation: malformed line %q", scanner.Text())
		}
		c, errC := strconv.Atoi(fields[0])
		i, errI := strconv.Atoi(fields[1])
		if errC != nil || errI != nil || c < 0 || i < 0 || c >= n || i >= n || seenPos[c] || seenVertex[i] {
			return nil, fmt.Errorf("permutation: invalid line %q", scanner.Text())
		}
		seenPos[c], seenVertex[i] = true, true
		perm[i] = c
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if count != n {
		return nil, fmt.Errorf("permutation: expected %d entries, got %d", n, count)
	}
	return perm, nil
}

// WritePermutation is the inverse of ReadPermutation.
func WritePermutation(w io.Writer, perm []int) error {
	bw := bufio.NewWriter(w)
	for i, c := range perm {
		fmt.Fprintf(bw, "%d %d\n", c, i)
	}
	return bw.Flush()
}
