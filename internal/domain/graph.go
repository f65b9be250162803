package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrDependencyCycle is returned when projects import each other in a cycle.
var ErrDependencyCycle = errors.New("project dependency cycle")

// TopoSort orders projects so that every project comes after the projects it
// imports. Imports outside the given set are ignored. Ties are broken by
// project id.
func TopoSort(projects []Project) ([]Project, error) {
	byID := make(map[string]Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	indegree := make(map[string]int, len(projects))
	dependents := make(map[string][]string)
	for _, p := range projects {
		indegree[p.ID] += 0
		for _, imp := range p.Imports {
			if _, ok := byID[imp]; !ok || imp == p.ID {
				continue
			}
			indegree[p.ID]++
			dependents[imp] = append(dependents[imp], p.ID)
		}
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	sorted := make([]Project, 0, len(projects))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, byID[id])

		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				i, _ := slices.BinarySearch(ready, dep)
				ready = slices.Insert(ready, i, dep)
			}
		}
	}

	if len(sorted) != len(byID) {
		var cyclic []string
		for id, n := range indegree {
			if n > 0 {
				cyclic = append(cyclic, id)
			}
		}
		slices.Sort(cyclic)
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(cyclic, ", "))
	}
	return sorted, nil
}
