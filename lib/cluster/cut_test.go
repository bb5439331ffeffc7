package cluster

import (
	"reflect"
	"testing"
)

func TestCutDeepSplitGranularity(t *testing.T) {
	// One tight branch of four and one branch of four that splits into
	// two pairs at a moderate height drop. The drop sits between the
	// fine and the coarse gap, so only the fine cut separates the
	// pairs.
	d := &Dendrogram{
		LeafCount: 8,
		Merges: []Merge{
			{Left: 4, Right: 5, Height: 0.01, Size: 2},   // 8
			{Left: 6, Right: 8, Height: 0.02, Size: 3},   // 9
			{Left: 7, Right: 9, Height: 0.03, Size: 4},   // 10
			{Left: 0, Right: 1, Height: 0.25, Size: 2},   // 11
			{Left: 2, Right: 3, Height: 0.25, Size: 2},   // 12
			{Left: 11, Right: 12, Height: 0.30, Size: 4}, // 13
			{Left: 10, Right: 13, Height: 1.0, Size: 8},  // 14
		},
	}
	fine := Cut(d, 2, true)
	wantFine := []int{1, 1, 2, 2, 0, 0, 0, 0}
	if !reflect.DeepEqual(fine, wantFine) {
		t.Errorf("expected fine labels %v but got %v", wantFine, fine)
	}
	coarse := Cut(d, 2, false)
	wantCoarse := []int{1, 1, 1, 1, 0, 0, 0, 0}
	if !reflect.DeepEqual(coarse, wantCoarse) {
		t.Errorf("expected coarse labels %v but got %v", wantCoarse, coarse)
	}
}

func TestCutLeavesOutliersUnassigned(t *testing.T) {
	// Leaf 5 only joins at the very top, above the static cut. Leaf 4
	// joins a tight cluster at a height the gap test accepts as part
	// of the branch.
	d := &Dendrogram{
		LeafCount: 6,
		Merges: []Merge{
			{Left: 0, Right: 1, Height: 0.05, Size: 2}, // 6
			{Left: 2, Right: 3, Height: 0.05, Size: 2}, // 7
			{Left: 6, Right: 7, Height: 0.08, Size: 4}, // 8
			{Left: 4, Right: 8, Height: 0.09, Size: 5}, // 9
			{Left: 5, Right: 9, Height: 1.0, Size: 6},  // 10
		},
	}
	labels := Cut(d, 3, true)
	want := []int{0, 0, 0, 0, 0, Unassigned}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected labels %v but got %v", want, labels)
	}
}

func TestCutPeelsSmallSideBranch(t *testing.T) {
	// Leaf 3 hangs high above a tight cluster of three, below the
	// static cut. The cluster qualifies and the hanger stays
	// unassigned, as does the undersized pair on the other side.
	d := &Dendrogram{
		LeafCount: 6,
		Merges: []Merge{
			{Left: 0, Right: 1, Height: 0.02, Size: 2}, // 6
			{Left: 4, Right: 5, Height: 0.02, Size: 2}, // 7
			{Left: 2, Right: 6, Height: 0.04, Size: 3}, // 8
			{Left: 3, Right: 8, Height: 0.30, Size: 4}, // 9
			{Left: 7, Right: 9, Height: 1.0, Size: 6},  // 10
		},
	}
	labels := Cut(d, 3, true)
	want := []int{0, 0, 0, Unassigned, Unassigned, Unassigned}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected labels %v but got %v", want, labels)
	}
}

func TestCutFlatDendrogram(t *testing.T) {
	// Every merge at height zero collapses into one module.
	d := &Dendrogram{
		LeafCount: 3,
		Merges: []Merge{
			{Left: 0, Right: 1, Height: 0, Size: 2},
			{Left: 2, Right: 3, Height: 0, Size: 3},
		},
	}
	labels := Cut(d, 2, true)
	want := []int{0, 0, 0}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected labels %v but got %v", want, labels)
	}
}
