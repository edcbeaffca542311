package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d should not be set", i)
		}
	}
	ba.Set(0)
	ba.Set(31)
	ba.Set(32)
	if !ba.Get(0) || !ba.Get(31) || !ba.Get(32) {
		t.Error("bits should be set")
	}
	if ba.Get(1) || ba.Get(30) {
		t.Error("bits should not be set")
	}
	if got := ba.Cardinality(); got != 3 {
		t.Errorf("Cardinality() = %d, want 3", got)
	}
}

func TestBitArrayNextSet(t *testing.T) {
	ba := NewBitArray(64)
	ba.Set(10)
	ba.Set(40)
	tests := []struct{ from, want int }{
		{0, 10},
		{10, 10},
		{11, 40},
		{41, 64},
		{100, 64},
		{-3, 10},
	}
	for _, tc := range tests {
		if got := ba.NextSet(tc.from); got != tc.want {
			t.Errorf("NextSet(%d) = %d, want %d", tc.from, got, tc.want)
		}
	}
}

func TestBitArrayClear(t *testing.T) {
	ba := NewBitArray(40)
	ba.Set(5)
	ba.Set(39)
	ba.Clear()
	if ba.Get(5) || ba.Get(39) {
		t.Error("Clear should unset every bit")
	}
	if got := ba.NextSet(0); got != 40 {
		t.Errorf("NextSet(0) after Clear = %d, want 40", got)
	}
}

func TestBitArrayPartialWord(t *testing.T) {
	ba := NewBitArray(40)
	for i := 32; i < 40; i++ {
		ba.Set(i)
	}
	if got := ba.NextSet(0); got != 32 {
		t.Errorf("NextSet(0) = %d, want 32", got)
	}
	if got := ba.NextSet(39); got != 39 {
		t.Errorf("NextSet(39) = %d, want 39", got)
	}
	if got := ba.Cardinality(); got != 8 {
		t.Errorf("Cardinality() = %d, want 8", got)
	}
}
