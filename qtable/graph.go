package qtable

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
)

type dotNode struct {
	id      int
	board   []game.Colour
	stride  int
	ToMove  game.Player
	Visited bool
}

func (n *dotNode) ID() int { return n.id }

func (n *dotNode) State() string {
	var buf bytes.Buffer
	for i, c := range n.board {
		if i%n.stride == 0 {
			fmt.Fprint(&buf, "⎢ ")
		}
		fmt.Fprintf(&buf, "%s ", c)
		if (i+1)%n.stride == 0 && i != 0 {
			fmt.Fprint(&buf, "⎥<BR />")
		}
	}
	return buf.String()
}

// ToDot renders the game tree reachable from start within depth plies as a
// graphviz digraph, with each edge carrying the learned value of that move.
// Useful for eyeballing what the table has actually learned about an opening.
// Depth is capped by the caller; the full tree is far too large for anything
// beyond the first few plies.
func (t *Table) ToDot(start game.State, depth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}

	ids := make(map[game.Key]int)
	var buf bytes.Buffer

	var walk func(s game.State, depth int) (int, error)
	walk = func(s game.State, depth int) (int, error) {
		k := s.Key()
		if id, ok := ids[k]; ok {
			return id, nil
		}
		id := len(ids)
		ids[k] = id

		_, n := s.BoardSize()
		node := &dotNode{
			id:      id,
			board:   s.Board(),
			stride:  n,
			ToMove:  s.ToMove(),
			Visited: t.Visited(k),
		}
		buf.Reset()
		if err := dotTmpl.Execute(&buf, node); err != nil {
			return 0, errors.WithStack(err)
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		if err := g.AddNode("G", nodeName(id), attrs); err != nil {
			return 0, errors.WithStack(err)
		}

		if depth <= 0 {
			return id, nil
		}
		if ended, _ := s.Ended(); ended {
			return id, nil
		}

		for _, move := range s.LegalMoves() {
			child, err := s.Clone().Apply(game.PlayerMove{Player: s.ToMove(), Single: move})
			if err != nil {
				return 0, err
			}
			childID, err := walk(child, depth-1)
			if err != nil {
				return 0, err
			}
			label := strconv.Quote(fmt.Sprintf("%d: %.3f", move, t.Get(k, move)))
			if err := g.AddEdge(nodeName(id), nodeName(childID), true, map[string]string{"label": label}); err != nil {
				return 0, errors.WithStack(err)
			}
		}
		return id, nil
	}

	if _, err := walk(start.Clone(), depth); err != nil {
		return "", err
	}
	return g.String(), nil
}

func nodeName(id int) string { return fmt.Sprintf("n%d", id) }

const dotTmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>To Move</TD><TD>{{.ToMove}}</TD></TR>
<TR><TD>Visited</TD><TD>{{.Visited}}</TD></TR>
<TR><TD>State</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var dotTmpl *template.Template

func init() {
	dotTmpl = template.Must(template.New("node").Parse(dotTmplRaw))
}
