package uanode

import (
	"fmt"
	"strings"
)

type GraphNode struct {
	ID         NodeID        `json:"id"`
	BrowseName QualifiedName `json:"browseName"`
	NodeClass  NodeClass     `json:"nodeClass"`
}

// GraphEdge means "To is the member of From named Name".
type GraphEdge struct {
	From NodeID        `json:"from"`
	To   NodeID        `json:"to"`
	Name QualifiedName `json:"name"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph returns a snapshot of the member tree resolved so far under n, in
// breadth-first order. Each node appears once; absent members are omitted.
func (n *Node) Graph() Graph {
	return n.GraphDepth(-1)
}

// GraphDepth is Graph limited to depth levels below n; a negative depth is unlimited.
func (n *Node) GraphDepth(depth int) Graph {
	type item struct {
		node  *Node
		level int
	}

	var g Graph
	seen := map[*Node]bool{n: true}
	queue := []item{{node: n}}
	g.Nodes = append(g.Nodes, graphNode(n))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth >= 0 && cur.level >= depth {
			continue
		}
		for _, e := range cur.node.memberEntries() {
			g.Edges = append(g.Edges, GraphEdge{From: cur.node.id, To: e.node.id, Name: e.name})
			if seen[e.node] {
				continue
			}
			seen[e.node] = true
			g.Nodes = append(g.Nodes, graphNode(e.node))
			queue = append(queue, item{node: e.node, level: cur.level + 1})
		}
	}
	return g
}

func graphNode(n *Node) GraphNode {
	return GraphNode{ID: n.id, BrowseName: n.BrowseName(), NodeClass: n.NodeClass()}
}

func (g GraphNode) label(sep string, escape func(string) string) string {
	if g.BrowseName.Name == "" {
		return escape(g.ID.String())
	}
	return escape(g.BrowseName.Name) + sep + escape(g.ID.String())
}

// DOT exports Graphviz DOT text.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph uanode {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[NodeID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.ID] = alias
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, n.label("\\n", escapeDOT)))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s -> %s [label=\"%s\"];\n", from, to, escapeDOT(e.Name.Name)))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	aliases := make(map[NodeID]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.ID] = alias
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, n.label("<br/>", escapeMermaid)))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", from, escapeMermaid(e.Name.Name), to))
	}
	return b.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func escapeMermaid(s string) string {
	r := strings.NewReplacer("\"", "#quot;", "|", "#124;")
	return r.Replace(s)
}
