package staging

import (
	"testing"

	"todolists/internal/models"
)

func items(flagSets ...string) []models.StagedItem {
	// each flag string is: "" plain, "i" important, "d" done, "id" both
	out := make([]models.StagedItem, len(flagSets))
	for i, flags := range flagSets {
		out[i] = models.StagedItem{Task: string(rune('A' + i)), OrderIndex: i}
		for _, c := range flags {
			switch c {
			case 'i':
				out[i].Important = true
			case 'd':
				out[i].Done = true
			}
		}
	}
	return out
}

func orderOf(items []models.StagedItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.OrderIndex
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		items []models.StagedItem
		order []int
		want  []int
	}{
		{
			name:  "important promoted and done demoted",
			items: items("", "i", "d"),
			order: []int{0, 1, 2},
			want:  []int{1, 0, 2},
		},
		{
			name:  "plain items follow the client order",
			items: items("", "", ""),
			order: []int{2, 0, 1},
			want:  []int{2, 0, 1},
		},
		{
			name:  "done item moved behind later plain items",
			items: items("d", "", ""),
			order: []int{0, 1, 2},
			want:  []int{1, 2, 0},
		},
		{
			name:  "both flags set: importance wins",
			items: items("", "id", ""),
			order: []int{0, 1, 2},
			want:  []int{1, 0, 2},
		},
		{
			name:  "several important items end up reversed",
			items: items("i", "", "i"),
			order: []int{0, 1, 2},
			want:  []int{2, 0, 1},
		},
		{
			name:  "several done items keep their relative order",
			items: items("d", "d", ""),
			order: []int{0, 1, 2},
			want:  []int{2, 0, 1},
		},
		{
			name:  "unreferenced items are dropped",
			items: items("", "", ""),
			order: []int{2, 0},
			want:  []int{2, 0},
		},
		{
			name:  "duplicate and unknown indices are ignored",
			items: items("", ""),
			order: []int{1, 1, 9, 0},
			want:  []int{1, 0},
		},
		{
			name:  "empty order drops everything",
			items: items("", ""),
			order: nil,
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderOf(Reorder(tt.items, tt.order))
			if !equalInts(got, tt.want) {
				t.Errorf("Reorder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReorderDoesNotMutateInput(t *testing.T) {
	in := items("", "i", "d")
	Reorder(in, []int{2, 1, 0})

	if !equalInts(orderOf(in), []int{0, 1, 2}) {
		t.Errorf("input mutated: %v", orderOf(in))
	}
}
