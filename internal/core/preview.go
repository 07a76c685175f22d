package core

// Preview paging is a read-only view over the mapped and validated batch.
// It never re-parses or re-validates; a page is a contiguous slice, so
// navigation is O(1) in the batch size.

// TotalPages returns ceil(n / pageSize), with 0 for an empty batch.
// A pageSize below 1 is treated as 1.
func TotalPages(n, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	return (n + pageSize - 1) / pageSize
}

// Page returns the records of one fixed-size page, in file order.
// Out-of-range page numbers saturate to the nearest valid page instead of
// erroring: page 0 or below becomes the first page, anything past the end
// becomes the last.
func Page(batch ImportBatch, pageSize, pageNumber int) ImportBatch {
	if len(batch) == 0 {
		return nil
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := TotalPages(len(batch), pageSize)
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > total {
		pageNumber = total
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > len(batch) {
		end = len(batch)
	}
	return batch[start:end]
}
