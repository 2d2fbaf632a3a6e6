package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Document is the JSON form of a graph:
//
//	{"n": 4, "edges": [[0, 1], [1, 2], [2, 3]]}
type Document struct {
	N     int      `json:"n"`
	Edges [][2]int `json:"edges"`
}

// ToDocument converts a Graph to its serialization format.
func ToDocument(g *Graph) Document {
	doc := Document{N: g.n, Edges: make([][2]int, len(g.edges))}
	for i, e := range g.edges {
		doc.Edges[i] = [2]int{e.U, e.V}
	}
	return doc
}

// FromDocument validates a Document and builds the Graph.
func FromDocument(doc Document) (*Graph, error) {
	return FromPairs(doc.N, doc.Edges)
}

// MarshalGraph converts a Graph to JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a Graph as indented JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a Graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return FromDocument(doc)
}

// ReadGraphFile reads a graph file. Files ending in .json are decoded as a
// [Document]; anything else is read as a whitespace edge list with
// [ReadEdgeList].
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadGraph(f)
	}
	g, _, err := ReadEdgeList(f)
	return g, err
}

// =============================================================================
// Edge Lists
// =============================================================================

// EdgeListStats reports what [ReadEdgeList] normalized away.
type EdgeListStats struct {
	Lines      int     // data lines read
	SelfLoops  int     // dropped (u,u) lines
	Duplicates int     // dropped repeats, including reversed pairs
	Labels     []int64 // Labels[v] is the original id of vertex v
}

// ReadEdgeList parses a SNAP-style edge list: one "u v" pair per line,
// extra columns ignored, blank lines and lines starting with '#' or '%'
// skipped. Original ids are relabelled to 0..n-1 in ascending order, and
// self-loops and duplicate pairs are dropped and counted, since published
// edge lists routinely list undirected edges in both directions.
//
// A leading "# n=N" comment, as written by [WriteEdgeList], fixes the vertex
// count instead: ids are kept verbatim and must lie in [0, N), so isolated
// vertices survive a round trip.
func ReadEdgeList(r io.Reader) (*Graph, EdgeListStats, error) {
	var (
		stats EdgeListStats
		raw   [][2]int64
		ids   = map[int64]struct{}{}
		n     = -1
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '%' {
			continue
		}
		if line[0] == '#' {
			if stats.Lines == 0 && n < 0 {
				h, ok, err := parseEdgeListHeader(line)
				if err != nil {
					return nil, stats, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "line %d", lineNo)
				}
				if ok {
					n = h
				}
			}
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) < 2 {
			return nil, stats, gerrors.New(gerrors.ErrCodeInvalidFormat, "line %d: expected two vertex ids, got %q", lineNo, line)
		}
		u, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, stats, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "line %d", lineNo)
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, stats, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "line %d", lineNo)
		}
		stats.Lines++
		ids[u] = struct{}{}
		ids[v] = struct{}{}
		raw = append(raw, [2]int64{u, v})
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan: %w", err)
	}
	if n >= 0 {
		for id := range ids {
			if id < 0 || id >= int64(n) {
				return nil, stats, gerrors.New(gerrors.ErrCodeInvalidFormat, "vertex id %d outside header range [0, %d)", id, n)
			}
		}
		stats.Labels = make([]int64, n)
		for i := range stats.Labels {
			stats.Labels[i] = int64(i)
		}
	} else {
		if len(ids) == 0 {
			return nil, stats, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrEmpty, "edge list has no edges")
		}
		stats.Labels = make([]int64, 0, len(ids))
		for id := range ids {
			stats.Labels = append(stats.Labels, id)
		}
		slices.Sort(stats.Labels)
	}
	index := make(map[int64]int, len(stats.Labels))
	for i, id := range stats.Labels {
		index[id] = i
	}

	seen := make(map[[2]int]struct{}, len(raw))
	edges := make([]Edge, 0, len(raw))
	for _, p := range raw {
		e := Edge{U: index[p[0]], V: index[p[1]]}
		if e.U == e.V {
			stats.SelfLoops++
			continue
		}
		k := e.key()
		if _, dup := seen[k]; dup {
			stats.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		edges = append(edges, e)
	}

	g, err := New(len(stats.Labels), edges)
	return g, stats, err
}

// parseEdgeListHeader reads the vertex count from a "# n=N m=M" comment.
// Comments without an n= field are not headers.
func parseEdgeListHeader(line string) (int, bool, error) {
	for _, f := range strings.Fields(strings.TrimPrefix(line, "#")) {
		v, ok := strings.CutPrefix(f, "n=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("header vertex count: %w", err)
		}
		if n < 1 {
			return 0, false, fmt.Errorf("header vertex count %d, want >= 1", n)
		}
		return n, true, nil
	}
	return 0, false, nil
}

// WriteEdgeList writes a "# n=N m=M" header, then one "u v" line per edge.
func WriteEdgeList(g *Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# n=%d m=%d\n", g.n, len(g.edges))
	for _, e := range g.edges {
		fmt.Fprintf(bw, "%d %d\n", e.U, e.V)
	}
	return bw.Flush()
}
