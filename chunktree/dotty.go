package chunktree

import (
	"fmt"
	"io"
)

type nodeids struct {
	idTable map[node]int
	max     int
}

func newtable() nodeids {
	return nodeids{
		idTable: make(map[node]int),
		max:     1,
	}
}

func (ids nodeids) find(n node) int {
	return ids.idTable[n]
}

func (ids *nodeids) alloc(n node) int {
	if id := ids.find(n); id > 0 {
		return id
	}
	ids.idTable[n] = ids.max
	ids.max++
	return ids.max - 1
}

// WriteDot outputs the internal structure of a tree in Graphviz DOT format
// (for debugging purposes). Shared subtrees show up once, with several
// incoming edges. Lazy leaves are drawn without loading them.
func WriteDot(tree *Tree, w io.Writer) error {
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	ids := newtable()
	nodelist, edgelist := "", ""
	err := tree.each(func(n node, pos uint64, depth int) error {
		ID := ids.alloc(n)
		switch n := n.(type) {
		case *leafNode:
			label := fmt.Sprintf("%d @%d\\n“%s”", n.len(), pos, strstart(n.data))
			nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", ID, label, nodeDotStyles(true, false))
		case *lazyNode:
			label := fmt.Sprintf("%d @%d\\n(lazy)", n.len(), pos)
			nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", ID, label, nodeDotStyles(true, true))
		case *innerNode:
			for i := range 3 {
				edgelist += fmt.Sprintf("\"%d\" -> \"%d\";\n", ID, ids.alloc(n.child(i)))
			}
			nodelist += fmt.Sprintf("\"%d\" [label=%d %s];\n", ID, n.len(), nodeDotStyles(false, false))
		}
		return nil
	})
	if err != nil {
		T().Errorf("chunktree DOT: %s", err.Error())
		return err
	}
	io.WriteString(w, nodelist)
	io.WriteString(w, edgelist)
	_, err = io.WriteString(w, "}\n")
	return err
}

func nodeDotStyles(isleaf bool, lazy bool) string {
	s := ",style=filled"
	if isleaf {
		s += ",shape=box"
		if lazy {
			s += ",fillcolor=\"#dddddd\""
		}
	} else {
		s += ",color=black,fillcolor=\"#a3d7e4\""
		s += ",shape=circle"
	}
	return s
}

// strstart returns a printable prefix of a leaf's bytes.
func strstart(data []byte) string {
	const maxlen = 10
	var s []byte
	for i, b := range data {
		if i == maxlen {
			s = append(s, "…"...)
			break
		}
		if b < 0x20 || b >= 0x7f || b == '"' || b == '\\' {
			b = '.'
		}
		s = append(s, b)
	}
	return string(s)
}
