package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("Validate() should reject a zero dimension")
	}
}

func TestShapeStrides(t *testing.T) {
	got := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ComputeStrides() = %v, want %v", got, want)
		}
	}
	if s := (Shape{}).ComputeStrides(); len(s) != 0 {
		t.Errorf("scalar strides = %v, want empty", s)
	}
}

func TestShapeOuterInner(t *testing.T) {
	s := Shape{2, 3, 4}
	if got := s.Outer(1); got != 2 {
		t.Errorf("Outer(1) = %d, want 2", got)
	}
	if got := s.Inner(1); got != 4 {
		t.Errorf("Inner(1) = %d, want 4", got)
	}
	if got := s.Inner(2); got != 1 {
		t.Errorf("Inner(2) = %d, want 1", got)
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{5}, Shape{3, 5}, true, false},
		{Shape{2, 3, 4}, Shape{4}, Shape{2, 3, 4}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v) expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v) unexpected error: %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || broadcast != tt.broadcast {
			t.Errorf("BroadcastShapes(%v, %v) = %v, %v; want %v, %v", tt.a, tt.b, got, broadcast, tt.want, tt.broadcast)
		}
	}
}

func TestBroadcastIndex(t *testing.T) {
	out := Shape{2, 3}
	in := Shape{3}
	outStrides := out.ComputeStrides()
	inStrides := in.ComputeStrides()

	// Row 1, column 2 of the output reads element 2 of the bias.
	if got := BroadcastIndex(5, out, outStrides, in, inStrides); got != 2 {
		t.Errorf("BroadcastIndex(5) = %d, want 2", got)
	}

	col := Shape{2, 1}
	if got := BroadcastIndex(4, out, outStrides, col, col.ComputeStrides()); got != 1 {
		t.Errorf("BroadcastIndex(4) into column = %d, want 1", got)
	}
}
