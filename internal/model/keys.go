package model

import (
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// KeyClusters maps a cluster name to the list of key strings the model
// learned to extract for that cluster. Cluster names are small decimal
// strings ("0", "1", ...) assigned by the service during training.
type KeyClusters map[string][]string

// ClusterNames returns the cluster names in numeric order.
// Non-numeric names (not expected from the service, but tolerated)
// sort after the numeric ones, alphabetically.
func (k KeyClusters) ClusterNames() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		ni, iErr := strconv.Atoi(names[i])
		nj, jErr := strconv.Atoi(names[j])
		switch {
		case iErr == nil && jErr == nil:
			return ni < nj
		case iErr == nil:
			return true
		case jErr == nil:
			return false
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// TotalKeys returns the total number of keys across all clusters.
func (k KeyClusters) TotalKeys() int {
	n := 0
	for _, keys := range k {
		n += len(keys)
	}
	return n
}

// Normalized returns a copy with every key string normalized to
// Unicode NFC. The service echoes key text verbatim from scanned
// documents, which can arrive in decomposed form; normalizing keeps
// display and comparison stable.
func (k KeyClusters) Normalized() KeyClusters {
	out := make(KeyClusters, len(k))
	for name, keys := range k {
		normalized := make([]string, len(keys))
		for i, key := range keys {
			normalized[i] = norm.NFC.String(key)
		}
		out[name] = normalized
	}
	return out
}
