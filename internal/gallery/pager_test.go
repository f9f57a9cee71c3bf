package gallery

import "testing"

func TestCanPrevCanNext(t *testing.T) {
	cases := []struct {
		offset, limit, total int
		prev, next           bool
	}{
		{0, 10, 42, false, true},
		{10, 10, 42, true, true},
		{40, 10, 42, true, false},
		{0, 10, 10, false, false},
		{0, 10, 0, false, false},
		{5, 10, 12, true, false},
		{32, 10, 42, true, false},
		{31, 10, 42, true, true},
	}
	for _, tc := range cases {
		if got := CanPrev(tc.offset); got != tc.prev {
			t.Fatalf("CanPrev(%d) = %v, want %v", tc.offset, got, tc.prev)
		}
		if got := CanNext(tc.offset, tc.limit, tc.total); got != tc.next {
			t.Fatalf("CanNext(%d, %d, %d) = %v, want %v", tc.offset, tc.limit, tc.total, got, tc.next)
		}
	}
}

func TestPrevOffsetFloorsAtZero(t *testing.T) {
	if got := PrevOffset(5, 10); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := PrevOffset(30, 10); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	if got := NextOffset(30, 10); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
}

func TestPageNumber(t *testing.T) {
	page, pages := PageNumber(10, 10, 42)
	if page != 2 || pages != 5 {
		t.Fatalf("expected page 2/5, got %d/%d", page, pages)
	}
	page, pages = PageNumber(0, 10, 0)
	if page != 1 || pages != 1 {
		t.Fatalf("expected page 1/1 for empty collection, got %d/%d", page, pages)
	}
}
