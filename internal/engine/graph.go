// Package engine keeps the derived cells of a measurement row consistent with
// its inputs. A static dependency graph per field family says which cells an
// edit affects; the row model recomputes them in topological order.
package engine

import (
	"sort"

	"github.com/innovadoor/sitemeasure/internal/model"
)

type edge struct {
	from, to model.Field
}

var locationInputs = []model.Field{model.FieldBldg, model.FieldFlatNo, model.FieldArea, model.FieldCustomArea}

func locationEdges(target model.Field) []edge {
	edges := make([]edge, len(locationInputs))
	for i, f := range locationInputs {
		edges[i] = edge{f, target}
	}
	return edges
}

var frameEdges = locationEdges(model.FieldLocationOfFitting)

var shutterEdges = append(locationEdges(model.FieldLocation),
	edge{model.FieldArea, model.FieldMinusWidth},
	edge{model.FieldCustomArea, model.FieldMinusWidth},
	edge{model.FieldWidth, model.FieldMinusWidth},
	edge{model.FieldArea, model.FieldMinusHeight},
	edge{model.FieldCustomArea, model.FieldMinusHeight},
	edge{model.FieldHeight, model.FieldMinusHeight},
	edge{model.FieldMinusWidth, model.FieldActWidth},
	edge{model.FieldMinusHeight, model.FieldActHeight},
	edge{model.FieldActWidth, model.FieldROWidth},
	edge{model.FieldActHeight, model.FieldROHeight},
	edge{model.FieldMinusWidth, model.FieldActSqFt},
	edge{model.FieldMinusHeight, model.FieldActSqFt},
)

// graph is the dependency graph of one field family.
type graph struct {
	order   map[model.Field]int // declaration order, used to break ties
	outputs map[model.Field][]model.Field
	inputs  map[model.Field][]model.Field
	derived []model.Field // every node with inputs, topologically ordered
}

func newGraph(k model.Kind, edges []edge) *graph {
	g := &graph{
		order:   make(map[model.Field]int),
		outputs: make(map[model.Field][]model.Field),
		inputs:  make(map[model.Field][]model.Field),
	}
	i := 0
	for _, f := range model.FieldsForKind(k) {
		g.order[f] = i
		i++
		if f == model.FieldArea {
			g.order[model.FieldCustomArea] = i
			i++
		}
	}
	for _, e := range edges {
		g.outputs[e.from] = append(g.outputs[e.from], e.to)
		g.inputs[e.to] = append(g.inputs[e.to], e.from)
	}

	var roots []model.Field
	for f := range g.outputs {
		if len(g.inputs[f]) == 0 {
			roots = append(roots, f)
		}
	}
	g.derived = g.closure(roots...)
	return g
}

var graphs = map[model.Family]*graph{
	model.FamilyFrame:   newGraph(model.KindRegularFrame, frameEdges),
	model.FamilyShutter: newGraph(model.KindRegularShutter, shutterEdges),
}

func graphFor(k model.Kind) *graph {
	return graphs[k.Family()]
}

// closure returns every field downstream of roots, roots excluded unless one
// is reachable from another, in topological order. Ready fields are taken in
// declaration order so the result is deterministic.
func (g *graph) closure(roots ...model.Field) []model.Field {
	inClosure := make(map[model.Field]bool)
	queue := append([]model.Field(nil), roots...)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, out := range g.outputs[f] {
			if !inClosure[out] {
				inClosure[out] = true
				queue = append(queue, out)
			}
		}
	}

	// Kahn's algorithm over the induced subgraph
	inDegree := make(map[model.Field]int, len(inClosure))
	for f := range inClosure {
		for _, in := range g.inputs[f] {
			if inClosure[in] {
				inDegree[f]++
			}
		}
	}
	var ready []model.Field
	for f := range inClosure {
		if inDegree[f] == 0 {
			ready = append(ready, f)
		}
	}

	result := make([]model.Field, 0, len(inClosure))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return g.order[ready[i]] < g.order[ready[j]] })
		f := ready[0]
		ready = ready[1:]
		result = append(result, f)
		for _, out := range g.outputs[f] {
			if !inClosure[out] {
				continue
			}
			inDegree[out]--
			if inDegree[out] == 0 {
				ready = append(ready, out)
			}
		}
	}
	return result
}

// Resolve returns the derived fields to recompute after field changes on a
// row of kind k, in dependency order. Fields without outputs (sr_no, remark,
// wall, frame act sizes) resolve to nothing.
func Resolve(k model.Kind, field model.Field) []model.Field {
	g := graphFor(k)
	if g == nil {
		return nil
	}
	return g.closure(field)
}

// Inputs returns the fields a derived field is computed from.
func Inputs(k model.Kind, field model.Field) []model.Field {
	g := graphFor(k)
	if g == nil {
		return nil
	}
	return append([]model.Field(nil), g.inputs[field]...)
}

// Derived returns every derived field of kind k in dependency order.
func Derived(k model.Kind) []model.Field {
	g := graphFor(k)
	if g == nil {
		return nil
	}
	return append([]model.Field(nil), g.derived...)
}
