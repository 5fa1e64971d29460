package model

import (
	"reflect"
	"testing"
)

// TestKeyClustersClusterNames verifies numeric ordering of cluster names.
func TestKeyClustersClusterNames(t *testing.T) {
	t.Parallel()

	t.Run("numeric names sort numerically", func(t *testing.T) {
		t.Parallel()
		clusters := KeyClusters{
			"10": {"Total:"},
			"2":  {"Address:"},
			"0":  {"Invoice No:"},
		}

		got := clusters.ClusterNames()
		want := []string{"0", "2", "10"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ClusterNames() = %v, want %v", got, want)
		}
	})

	t.Run("non-numeric names sort after numeric", func(t *testing.T) {
		t.Parallel()
		clusters := KeyClusters{
			"misc": {"Notes:"},
			"1":    {"Date:"},
		}

		got := clusters.ClusterNames()
		want := []string{"1", "misc"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ClusterNames() = %v, want %v", got, want)
		}
	})

	t.Run("empty clusters return empty slice", func(t *testing.T) {
		t.Parallel()
		if got := (KeyClusters{}).ClusterNames(); len(got) != 0 {
			t.Errorf("expected empty slice, got %v", got)
		}
	})
}

// TestKeyClustersTotalKeys verifies key counting across clusters.
func TestKeyClustersTotalKeys(t *testing.T) {
	t.Parallel()

	clusters := KeyClusters{
		"0": {"Invoice No:", "Date:"},
		"1": {"Total:"},
	}
	if got := clusters.TotalKeys(); got != 3 {
		t.Errorf("TotalKeys() = %d, want 3", got)
	}
}

// TestKeyClustersNormalized verifies NFC normalization of key text.
// Scanned documents can yield decomposed Unicode (e.g. "e" + combining
// accent); normalization must fold these to the composed form without
// mutating the original map.
func TestKeyClustersNormalized(t *testing.T) {
	t.Parallel()

	decomposed := "Résumé:" // "Résumé:" in NFD form
	composed := "Résumé:"

	clusters := KeyClusters{"0": {decomposed}}
	normalized := clusters.Normalized()

	if got := normalized["0"][0]; got != composed {
		t.Errorf("expected NFC form %q, got %q", composed, got)
	}
	if clusters["0"][0] != decomposed {
		t.Error("Normalized() must not mutate the receiver")
	}
}
