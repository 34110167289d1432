package nav

import (
	"container/heap"
	"math"

	"github.com/jakecoffman/cp"
)

const defaultCellSize = 10.0

// Grid is a 4-connected navigation grid laid over a rectangular area.
// Waypoints are the world-space centers of the cells on the path.
type Grid struct {
	bounds   cp.BB
	cellSize float64
	width    int
	height   int
	blocked  []bool
}

type gridPos struct {
	x int
	y int
}

// NewGrid covers bounds with square cells of cellSize.
func NewGrid(bounds cp.BB, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	w := int(math.Ceil((bounds.R - bounds.L) / cellSize))
	h := int(math.Ceil((bounds.T - bounds.B) / cellSize))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Grid{
		bounds:   bounds,
		cellSize: cellSize,
		width:    w,
		height:   h,
		blocked:  make([]bool, w*h),
	}
}

// Block marks every cell overlapping bb as impassable.
func (g *Grid) Block(bb cp.BB) {
	if g == nil {
		return
	}
	lo := g.cell(cp.Vector{X: bb.L, Y: bb.B})
	hi := g.cell(cp.Vector{X: bb.R - 0.001, Y: bb.T - 0.001})
	for y := lo.y; y <= hi.y; y++ {
		for x := lo.x; x <= hi.x; x++ {
			g.blocked[y*g.width+x] = true
		}
	}
}

// Blocked reports whether the cell containing p is impassable.
func (g *Grid) Blocked(p cp.Vector) bool {
	c := g.cell(p)
	return g.blocked[c.y*g.width+c.x]
}

// FindPath returns the waypoints from the cell of start to the cell of end,
// both included. ok is false when either end is blocked or no route exists.
func (g *Grid) FindPath(start, end cp.Vector) ([]cp.Vector, bool) {
	if g == nil {
		return nil, false
	}
	path := g.astar(g.cell(start), g.cell(end))
	if len(path) == 0 {
		return nil, false
	}
	out := make([]cp.Vector, 0, len(path))
	for _, p := range path {
		out = append(out, g.center(p))
	}
	return out, true
}

func (g *Grid) cell(p cp.Vector) gridPos {
	gx := int(math.Floor((p.X - g.bounds.L) / g.cellSize))
	gy := int(math.Floor((p.Y - g.bounds.B) / g.cellSize))
	gx = min(max(gx, 0), g.width-1)
	gy = min(max(gy, 0), g.height-1)
	return gridPos{x: gx, y: gy}
}

func (g *Grid) center(p gridPos) cp.Vector {
	half := g.cellSize * 0.5
	return cp.Vector{
		X: g.bounds.L + float64(p.x)*g.cellSize + half,
		Y: g.bounds.B + float64(p.y)*g.cellSize + half,
	}
}

func (g *Grid) astar(start, goal gridPos) []gridPos {
	startIdx := start.y*g.width + start.x
	goalIdx := goal.y*g.width + goal.x
	if g.blocked[startIdx] || g.blocked[goalIdx] {
		return nil
	}
	if startIdx == goalIdx {
		return []gridPos{start}
	}

	open := &openSet{}
	heap.Init(open)

	cameFrom := make([]int, len(g.blocked))
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	gScore := make([]float64, len(g.blocked))
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	gScore[startIdx] = 0
	heap.Push(open, &openItem{pos: start, f: heuristic(start, goal)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem).pos
		curIdx := cur.y*g.width + cur.x
		if curIdx == goalIdx {
			return reconstructPath(cameFrom, g.width, startIdx, goalIdx)
		}

		for _, n := range g.neighbors(cur) {
			idx := n.y*g.width + n.x
			if g.blocked[idx] {
				continue
			}
			tentative := gScore[curIdx] + 1
			if tentative < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentative
				heap.Push(open, &openItem{pos: n, f: tentative + heuristic(n, goal)})
			}
		}
	}
	return nil
}

func (g *Grid) neighbors(p gridPos) []gridPos {
	out := make([]gridPos, 0, 4)
	if p.x > 0 {
		out = append(out, gridPos{x: p.x - 1, y: p.y})
	}
	if p.x < g.width-1 {
		out = append(out, gridPos{x: p.x + 1, y: p.y})
	}
	if p.y > 0 {
		out = append(out, gridPos{x: p.x, y: p.y - 1})
	}
	if p.y < g.height-1 {
		out = append(out, gridPos{x: p.x, y: p.y + 1})
	}
	return out
}

func reconstructPath(cameFrom []int, width, startIdx, goalIdx int) []gridPos {
	if cameFrom[goalIdx] == -1 {
		return nil
	}
	path := make([]gridPos, 0, 32)
	for cur := goalIdx; cur != -1; cur = cameFrom[cur] {
		path = append(path, gridPos{x: cur % width, y: cur / width})
		if cur == startIdx {
			break
		}
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func heuristic(a, b gridPos) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

type openItem struct {
	pos   gridPos
	f     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
