package core

import "testing"

func makeBatch(n int) ImportBatch {
	batch := make(ImportBatch, n)
	for i := range batch {
		batch[i] = &CandidateRecord{RowNumber: i + 2, Fields: map[string]string{}}
	}
	return batch
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, pageSize, want int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{50, 25, 2},
		{51, 25, 3},
		{10, 1, 10},
		{10, 0, 10}, // pageSize below 1 behaves as 1
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.n, tt.pageSize, got, tt.want)
		}
	}
}

func TestPage_Contents(t *testing.T) {
	batch := makeBatch(7)

	page := Page(batch, 3, 1)
	if len(page) != 3 || page[0].RowNumber != 2 {
		t.Errorf("page 1 = %d records starting at row %d", len(page), page[0].RowNumber)
	}

	page = Page(batch, 3, 3)
	if len(page) != 1 || page[0].RowNumber != 8 {
		t.Errorf("last page = %d records", len(page))
	}
}

func TestPage_Saturates(t *testing.T) {
	batch := makeBatch(7)

	// Past the end clamps to the last page.
	page := Page(batch, 3, 99)
	if len(page) != 1 || page[0].RowNumber != 8 {
		t.Errorf("page 99 should be the last page, got %d records", len(page))
	}

	// Zero and negative clamp to the first page.
	for _, n := range []int{0, -5} {
		page = Page(batch, 3, n)
		if len(page) != 3 || page[0].RowNumber != 2 {
			t.Errorf("page %d should be the first page", n)
		}
	}
}

func TestPage_EmptyBatch(t *testing.T) {
	if page := Page(nil, 25, 1); page != nil {
		t.Errorf("empty batch page = %v, want nil", page)
	}
}

// Paging partitions the batch: concatenating every page reproduces the
// batch in order.
func TestPage_Partition(t *testing.T) {
	batch := makeBatch(23)
	pageSize := 5

	var rebuilt ImportBatch
	for p := 1; p <= TotalPages(len(batch), pageSize); p++ {
		rebuilt = append(rebuilt, Page(batch, pageSize, p)...)
	}

	if len(rebuilt) != len(batch) {
		t.Fatalf("rebuilt %d records, want %d", len(rebuilt), len(batch))
	}
	for i := range batch {
		if rebuilt[i] != batch[i] {
			t.Fatalf("record %d differs after paging", i)
		}
	}
}
