package types

import (
	"context"
	"testing"
)

func list(ids ...int) *ItemList {
	l := NewItemList()
	for _, id := range ids {
		l.AddId(id)
	}
	return l
}

func TestIntersection(t *testing.T) {
	in := NewIntersection(context.Background())
	in.Add(func(context.Context) *ItemList { return list(1, 2, 5) })
	in.Add(func(context.Context) *ItemList { return list(2, 3, 5) })
	in.Add(func(context.Context) *ItemList { return nil })

	result, restricted := in.Wait()
	if !restricted {
		t.Fatal("expected a restricted result")
	}
	if result.Len() != 2 || !result.Contains(2) || !result.Contains(5) {
		t.Errorf("expected {2,5}, got %v", *result)
	}
}

func TestIntersectionWithoutSelections(t *testing.T) {
	in := NewIntersection(context.Background())
	in.Add(func(context.Context) *ItemList { return nil })
	result, restricted := in.Wait()
	if restricted {
		t.Error("nil sets should not restrict")
	}
	if !result.IsEmpty() {
		t.Errorf("expected empty result, got %v", *result)
	}
}

func TestIntersectionDisjoint(t *testing.T) {
	in := NewIntersection(context.Background())
	in.Add(func(context.Context) *ItemList { return list(1) })
	in.Add(func(context.Context) *ItemList { return list(2) })
	result, restricted := in.Wait()
	if !restricted || !result.IsEmpty() {
		t.Errorf("expected restricted empty result, got %v %v", *result, restricted)
	}
}
