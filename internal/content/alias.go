package content

import (
	"cmp"
	"log/slog"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// AliasGroup is a set of directories listing the same discovery path.
type AliasGroup struct {
	DiscoveryPath string
	Canonical     *Node
	Aliases       []*Node
}

// DetectAliases groups directories by discovery path and, for every group
// with more than one member, marks all but one as aliases of the canonical
// member. Directories listed through a redirected ancestor only compete when
// no member is reachable without one. Among the rest the origin
// (SourcePath == DiscoveryPath) wins, then the shallowest, then the lexically
// smallest source path. Members below an already aliased directory are left
// alone since their subtree is never rendered.
func DetectAliases(tree *Tree) []AliasGroup {
	byPath := make(map[string][]*Node)
	shallowest := make(map[string]int)
	var order []string
	for _, dir := range tree.Directories() {
		if dir.DiscoveryPath == "" {
			continue
		}
		key := filepath.Clean(dir.DiscoveryPath)
		if _, seen := byPath[key]; !seen {
			order = append(order, key)
			shallowest[key] = dir.Depth()
		}
		byPath[key] = append(byPath[key], dir)
		shallowest[key] = min(shallowest[key], dir.Depth())
	}
	// Parents settle before their children so aliased subtrees can be excluded.
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(shallowest[a], shallowest[b])
	})

	var groups []AliasGroup
	for _, key := range order {
		members := slices.DeleteFunc(slices.Clone(byPath[key]), hasAliasedAncestor)
		if len(members) < 2 {
			continue
		}
		slices.SortStableFunc(members, compareCanonical)
		canonical := members[0]
		group := AliasGroup{DiscoveryPath: key, Canonical: canonical}
		for _, m := range members[1:] {
			if m.aliasTo != nil {
				continue
			}
			if err := m.SetAlias(canonical); err != nil {
				slog.Warn("Alias assignment failed", logfields.Path(m.SourcePath), logfields.Error(err))
				continue
			}
			group.Aliases = append(group.Aliases, m)
			slog.Debug("Detected alias", logfields.Path(m.SourcePath), logfields.AliasOf(canonical.SourcePath))
		}
		groups = append(groups, group)
	}
	return groups
}

func compareCanonical(a, b *Node) int {
	if ar, br := hasRedirectedAncestor(a), hasRedirectedAncestor(b); ar != br {
		if br {
			return -1
		}
		return 1
	}
	if ao, bo := a.IsOrigin(), b.IsOrigin(); ao != bo {
		if ao {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Depth(), b.Depth()); c != 0 {
		return c
	}
	return cmp.Compare(a.SourcePath, b.SourcePath)
}

// hasRedirectedAncestor reports whether n was discovered through a parent
// whose listing comes from somewhere else.
func hasRedirectedAncestor(n *Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.DiscoveryPath != "" && !p.IsOrigin() {
			return true
		}
	}
	return false
}

func hasAliasedAncestor(n *Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.aliasTo != nil {
			return true
		}
	}
	return false
}
