package ringbuffer

import (
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	rb := New[int](10)
	if rb == nil {
		t.Fatal("New returned nil")
	}
	if rb.Cap() != 10 {
		t.Errorf("expected capacity 10, got %d", rb.Cap())
	}
	if rb.Len() != 0 {
		t.Errorf("expected length 0, got %d", rb.Len())
	}
	if got := rb.Items(); len(got) != 0 {
		t.Errorf("expected no items, got %v", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("New did not panic with non-positive size")
		}
	}()
	New[int](0)
}

func TestRingBuffer_Add(t *testing.T) {
	rb := New[string](3)

	rb.Add("a")
	if rb.Len() != 1 || rb.head != 1 {
		t.Errorf("after 1 add: len=%d head=%d", rb.Len(), rb.head)
	}
	rb.Add("b")
	rb.Add("c")
	if rb.Len() != 3 || rb.head != 0 {
		t.Errorf("after 3 adds: len=%d head=%d", rb.Len(), rb.head)
	}

	// Overwrites "a"
	rb.Add("d")
	if rb.Len() != 3 {
		t.Errorf("expected length to stay at 3, got %d", rb.Len())
	}
	if rb.items[0] != "d" {
		t.Errorf("expected oldest slot to be overwritten, got %q", rb.items[0])
	}
}

func TestRingBuffer_Items(t *testing.T) {
	tests := []struct {
		name string
		size int
		add  []int
		want []int
	}{
		{"empty", 3, nil, []int{}},
		{"partial", 5, []int{1, 2}, []int{1, 2}},
		{"exactly full", 3, []int{1, 2, 3}, []int{1, 2, 3}},
		{"wrapped once", 3, []int{1, 2, 3, 4}, []int{2, 3, 4}},
		{"wrapped twice", 3, []int{1, 2, 3, 4, 5, 6, 7}, []int{5, 6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := New[int](tt.size)
			for _, v := range tt.add {
				rb.Add(v)
			}
			if got := rb.Items(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Items() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRingBuffer_ItemsIsACopy(t *testing.T) {
	rb := New[int](2)
	rb.Add(1)
	got := rb.Items()
	got[0] = 99
	if rb.Items()[0] != 1 {
		t.Error("modifying Items() result changed the buffer")
	}
}

func TestRingBuffer_Reset(t *testing.T) {
	rb := New[int](2)
	rb.Add(1)
	rb.Add(2)
	rb.Add(3)
	rb.Reset()

	if rb.Len() != 0 {
		t.Errorf("expected length 0 after reset, got %d", rb.Len())
	}
	rb.Add(4)
	if got := rb.Items(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("Items() after reset = %v", got)
	}
}
