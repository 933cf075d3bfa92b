package routing

import (
	"container/heap"
	"math"
	"regexp"
	"strconv"
	"strings"

	"mapnav-server/mapdata"
	"mapnav-server/shared"
)

// defaultVerticalDistance is the edge weight for connections between levels
// when the package doesn't specify one.
const defaultVerticalDistance = 10.0

type Options struct {
	// Allowed is the set of permitted connection types; nil allows
	// everything.
	Allowed map[string]bool

	// Include and Avoid hold group names. A location belonging to an
	// avoided group is not routed through unless one of its groups is
	// included. Endpoints are always allowed.
	Include map[string]bool
	Avoid   map[string]bool
}

type edge struct {
	to       string
	ctype    string
	distance float64
}

// Graph is the routing view of the loaded map package: area locations as
// nodes, connections as bidirectional edges.
type Graph struct {
	areas map[string]*mapdata.AreaLocation
	adj   map[string][]edge
}

func NewGraph(areas map[string]*mapdata.AreaLocation, connections []mapdata.Connection) *Graph {
	g := &Graph{
		areas: areas,
		adj:   map[string][]edge{},
	}

	for _, conn := range connections {
		from, okFrom := areas[conn.From]
		to, okTo := areas[conn.To]
		if !okFrom || !okTo {
			continue
		}

		distance := conn.Distance
		if distance <= 0 {
			if from.Level == to.Level {
				fx, fy := from.Center()
				tx, ty := to.Center()
				distance = math.Max(math.Hypot(tx-fx, ty-fy), 1)
			} else {
				distance = defaultVerticalDistance
			}
		}

		g.adj[conn.From] = append(g.adj[conn.From], edge{to: conn.To, ctype: conn.CType, distance: distance})
		g.adj[conn.To] = append(g.adj[conn.To], edge{to: conn.From, ctype: flipDirection(conn.CType), distance: distance})
	}

	return g
}

func flipDirection(ctype string) string {
	switch {
	case strings.HasSuffix(ctype, "_up"):
		return strings.TrimSuffix(ctype, "_up") + "_down"
	case strings.HasSuffix(ctype, "_down"):
		return strings.TrimSuffix(ctype, "_down") + "_up"
	default:
		return ctype
	}
}

var graphCoordPattern = regexp.MustCompile(`^c:([a-z0-9-_]+):([0-9]+):([0-9]+)$`)

// resolve maps a location id onto graph nodes: an area is its own node, a
// group is all of its connected members, coordinates snap to the nearest
// connected node on the same level.
func (g *Graph) resolve(id string) []string {
	if match := graphCoordPattern.FindStringSubmatch(id); match != nil {
		level := match[1]
		x, _ := strconv.Atoi(match[2])
		y, _ := strconv.Atoi(match[3])
		return g.nearestNode(level, float64(x)/100, float64(y)/100)
	}

	if name, ok := strings.CutPrefix(id, "g:"); ok {
		var nodes []string
		for areaName, area := range g.areas {
			if _, connected := g.adj[areaName]; !connected {
				continue
			}
			for _, group := range area.Groups {
				if group == name {
					nodes = append(nodes, areaName)
					break
				}
			}
		}
		return nodes
	}

	if _, connected := g.adj[id]; connected {
		return []string{id}
	}
	return nil
}

func (g *Graph) nearestNode(level string, x, y float64) []string {
	var nearest string
	nearestDist := math.Inf(1)
	for name, area := range g.areas {
		if area.Level != level {
			continue
		}
		if _, connected := g.adj[name]; !connected {
			continue
		}
		cx, cy := area.Center()
		dist := math.Hypot(cx-x, cy-y)
		if dist < nearestDist {
			nearest = name
			nearestDist = dist
		}
	}
	if nearest == "" {
		return nil
	}
	return []string{nearest}
}

func (g *Graph) avoided(name string, opts Options) bool {
	area, ok := g.areas[name]
	if !ok {
		return false
	}
	for _, group := range area.Groups {
		if opts.Include[group] {
			return false
		}
	}
	for _, group := range area.Groups {
		if opts.Avoid[group] {
			return true
		}
	}
	return false
}

// Route finds the shortest path between two locations under the given
// settings.
func (g *Graph) Route(origin, destination mapdata.Location, opts Options) (*shared.Route, error) {
	if origin.LocationId() == destination.LocationId() {
		return nil, ErrAlreadyThere
	}

	originNodes := g.resolve(origin.LocationId())
	destNodes := g.resolve(destination.LocationId())
	if len(originNodes) == 0 || len(destNodes) == 0 {
		return nil, ErrNotYetRoutable
	}

	targets := map[string]bool{}
	for _, node := range destNodes {
		targets[node] = true
	}
	for _, node := range originNodes {
		if targets[node] {
			return nil, ErrAlreadyThere
		}
	}

	endpoints := map[string]bool{}
	for _, node := range originNodes {
		endpoints[node] = true
	}
	for _, node := range destNodes {
		endpoints[node] = true
	}

	path, distance := g.shortestPath(originNodes, targets, endpoints, opts)
	if path == nil {
		return nil, ErrNoRouteFound
	}

	route := &shared.Route{
		Origin: shared.LocationResult{
			Id:       origin.LocationId(),
			Title:    origin.Title(),
			Subtitle: origin.Subtitle(),
		},
		Destination: shared.LocationResult{
			Id:       destination.LocationId(),
			Title:    destination.Title(),
			Subtitle: destination.Subtitle(),
		},
		Distance: distance,
	}

	for i := 1; i < len(path); i++ {
		step := path[i]
		route.Legs = append(route.Legs, shared.RouteLeg{
			Level:    g.areas[step.node].Level,
			CType:    step.ctype,
			From:     g.areas[path[i-1].node].DisplayTitle(),
			To:       g.areas[step.node].DisplayTitle(),
			Distance: step.distance,
		})
	}

	return route, nil
}

type pathStep struct {
	node     string
	ctype    string
	distance float64
}

type queueItem struct {
	node     string
	distance float64
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].distance < pq[j].distance }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *priorityQueue) Push(x any)         { item := x.(*queueItem); item.index = len(*pq); *pq = append(*pq, item) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

func (g *Graph) shortestPath(sources []string, targets, endpoints map[string]bool, opts Options) ([]pathStep, float64) {
	dist := map[string]float64{}
	prev := map[string]pathStep{}

	pq := priorityQueue{}
	heap.Init(&pq)
	for _, source := range sources {
		dist[source] = 0
		heap.Push(&pq, &queueItem{node: source, distance: 0})
	}

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*queueItem)
		if item.distance > dist[item.node] {
			continue
		}

		if targets[item.node] {
			var path []pathStep
			node := item.node
			for {
				step, ok := prev[node]
				if !ok {
					path = append([]pathStep{{node: node}}, path...)
					break
				}
				path = append([]pathStep{{node: node, ctype: step.ctype, distance: step.distance}}, path...)
				node = step.node
			}
			return path, item.distance
		}

		for _, e := range g.adj[item.node] {
			if opts.Allowed != nil && !opts.Allowed[e.ctype] {
				continue
			}
			if !endpoints[e.to] && g.avoided(e.to, opts) {
				continue
			}
			next := item.distance + e.distance
			if current, seen := dist[e.to]; seen && current <= next {
				continue
			}
			dist[e.to] = next
			prev[e.to] = pathStep{node: item.node, ctype: e.ctype, distance: e.distance}
			heap.Push(&pq, &queueItem{node: e.to, distance: next})
		}
	}

	return nil, 0
}
