package pager

import (
	"slices"
	"testing"

	"github.com/matst80/slask-catalog/pkg/types"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 9, 1},
		{47, 9, 6},
		{45, 9, 5},
		{1, 50, 1},
		{10, 0, 1},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(9, TotalPages(47, 9)); got != 6 {
		t.Errorf("expected page 6, got %d", got)
	}
	if got := Clamp(3, TotalPages(0, 9)); got != 1 {
		t.Errorf("expected page 1 for empty result, got %d", got)
	}
	if got := Clamp(-2, 4); got != 1 {
		t.Errorf("expected page 1 for negative page, got %d", got)
	}
}

func TestResolve(t *testing.T) {
	info := Resolve(types.PageState{Page: 9, PageSize: 9}, 47)
	if info.Page != 6 || info.TotalPages != 6 {
		t.Fatalf("unexpected info %+v", info)
	}
	if !info.HasPrev || info.HasNext {
		t.Errorf("expected prev only on last page, got %+v", info)
	}
	if !slices.Equal(info.Numbers, []int{2, 3, 4, 5, 6}) {
		t.Errorf("unexpected page numbers %v", info.Numbers)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	if got := Slice(items, 2, 3); !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("unexpected page %v", got)
	}
	if got := Slice(items, 3, 3); !slices.Equal(got, []int{7}) {
		t.Errorf("unexpected last page %v", got)
	}
	if got := Slice(items, 4, 3); len(got) != 0 {
		t.Errorf("expected empty page, got %v", got)
	}
}

func TestNumbers(t *testing.T) {
	if got := Numbers(1, 2, 5); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("unexpected numbers %v", got)
	}
	if got := Numbers(5, 10, 5); !slices.Equal(got, []int{3, 4, 5, 6, 7}) {
		t.Errorf("unexpected numbers %v", got)
	}
}

func TestClampPageSize(t *testing.T) {
	if got := ClampPageSize(0, 9, 50); got != 9 {
		t.Errorf("expected default size, got %d", got)
	}
	if got := ClampPageSize(500, 9, 50); got != 50 {
		t.Errorf("expected max size, got %d", got)
	}
}
