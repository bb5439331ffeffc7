// Package explorer serves exported networks over a REST api. The edge
// and node endpoints use the response shapes the grafana node graph
// panel expects.
package explorer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/coexnet/coexnet/lib/graph"
)

// Types for the REST API
type networkListResponse struct {
	Networks []NetworkEntry `json:"networks"`
}

type moduleResponse struct {
	Id    int    `json:"id"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type moduleListResponse struct {
	Modules []moduleResponse `json:"modules"`
}

type subgraphResponse struct {
	Id   int `json:"id"`
	Size int `json:"size"`
}

type subgraphListResponse struct {
	Subgraphs []subgraphResponse `json:"subgraphs"`
}

type nodeResponse struct {
	Id       int64  `json:"id"`
	Title    string `json:"title"`
	SubTitle string `json:"subtitle,omitempty"`
	Mainstat string `json:"mainstat,omitempty"`
}

type nodesResponse struct {
	Nodes []nodeResponse `json:"nodes"`
}

type edgeResponse struct {
	Id        int    `json:"id"`
	Source    int64  `json:"source"`
	Target    int64  `json:"target"`
	Thickness int    `json:"thickness"`
	Mainstat  string `json:"mainstat,omitempty"`
}

type edgesResponse struct {
	Edges []edgeResponse `json:"edges"`
}

func (c *NetworkExplorer) GetNetworks(w http.ResponseWriter, r *http.Request) {
	c.cacheLock.RLock()
	ret := networkListResponse{
		Networks: make([]NetworkEntry, 0, len(c.networkCache)),
	}
	for _, entry := range c.networkCache {
		if entry == nil {
			continue
		}
		ret.Networks = append(ret.Networks, *entry)
	}
	c.cacheLock.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ret)
}

func (c *NetworkExplorer) GetModules(w http.ResponseWriter, r *http.Request) {
	artifact := c.getNetwork(r.URL.Query())
	if artifact == nil {
		http.Error(w, "no network found", http.StatusNotFound)
		return
	}

	sizes := make(map[int]int)
	colors := make(map[int]string)
	for _, v := range artifact.Vertices() {
		if v.Module < 0 {
			continue
		}
		sizes[v.Module]++
		colors[v.Module] = v.Color
	}
	resp := moduleListResponse{
		Modules: make([]moduleResponse, 0, len(sizes)),
	}
	for id, size := range sizes {
		resp.Modules = append(resp.Modules, moduleResponse{Id: id, Color: colors[id], Size: size})
	}
	sort.Slice(resp.Modules, func(i, j int) bool {
		return resp.Modules[i].Id < resp.Modules[j].Id
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetModuleNodes returns the node list for one module, or for the
// whole network when no module is given.
func (c *NetworkExplorer) GetModuleNodes(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	artifact := c.getNetwork(params)
	if artifact == nil {
		http.Error(w, "no network found", http.StatusNotFound)
		return
	}
	moduleId, filtered, err := getModuleId(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := nodesResponse{
		Nodes: make([]nodeResponse, 0, artifact.VertexCount()),
	}
	for _, v := range artifact.Vertices() {
		if filtered && v.Module != moduleId {
			continue
		}
		resp.Nodes = append(resp.Nodes, nodeResponse{
			Id:       v.ID(),
			Title:    v.Gene,
			SubTitle: strings.Join(v.Annotations, " "),
			Mainstat: v.Color,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetModuleEdges returns the edge list for one module, or for the
// whole network when no module is given.
func (c *NetworkExplorer) GetModuleEdges(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	artifact := c.getNetwork(params)
	if artifact == nil {
		http.Error(w, "no network found", http.StatusNotFound)
		return
	}
	moduleId, filtered, err := getModuleId(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := edgesResponse{
		Edges: make([]edgeResponse, 0, artifact.EdgeCount()),
	}
	counter := 0
	for _, l := range artifact.Links() {
		from := l.From().(*graph.Vertex)
		to := l.To().(*graph.Vertex)
		if filtered && (from.Module != moduleId || to.Module != moduleId) {
			continue
		}
		sign := "+"
		if !l.Positive {
			sign = "-"
		}
		resp.Edges = append(resp.Edges, edgeResponse{
			Id:        counter,
			Source:    from.ID(),
			Target:    to.ID(),
			Thickness: 1 + int(4*l.W),
			Mainstat:  fmt.Sprintf("%s%.3f", sign, l.W),
		})
		counter++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (c *NetworkExplorer) GetSubgraphs(w http.ResponseWriter, r *http.Request) {
	artifact := c.getNetwork(r.URL.Query())
	if artifact == nil {
		http.Error(w, "no network found", http.StatusNotFound)
		return
	}

	components := artifact.Components()
	resp := subgraphListResponse{
		Subgraphs: make([]subgraphResponse, 0, len(components)),
	}
	for graphId, component := range components {
		resp.Subgraphs = append(resp.Subgraphs, subgraphResponse{Id: graphId, Size: len(component)})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// getNetwork resolves the network parameter to a loaded artifact. With
// no parameter it returns the most recent loaded network.
func (c *NetworkExplorer) getNetwork(params url.Values) *graph.Artifact {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()
	names, ok := params["network"]
	if !ok {
		for _, entry := range c.networkCache {
			if entry != nil && entry.Status == NetworkLoaded {
				return entry.artifact
			}
		}
		return nil
	}
	name := strings.TrimSpace(names[0])
	for _, entry := range c.networkCache {
		if entry != nil && entry.Name == name && entry.Status == NetworkLoaded {
			return entry.artifact
		}
	}
	return nil
}

func getModuleId(params url.Values) (int, bool, error) {
	module, ok := params["module"]
	if !ok {
		return 0, false, nil
	}
	moduleId, err := strconv.ParseInt(strings.TrimSpace(module[0]), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse an integer out of %+v", module[0])
	}
	return int(moduleId), true, nil
}
