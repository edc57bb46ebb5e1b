package types

// PaginationMetadata describes one page of a filtered listing. It is derived
// per query and carries no identity across requests.
type PaginationMetadata struct {
	TotalItemCount int `json:"totalItemCount"`
	TotalPages     int `json:"totalPages"`
	PageSize       int `json:"pageSize"`
	CurrentPage    int `json:"currentPage"`
}

// NewPaginationMetadata computes page counts for a total of totalItemCount
// matching rows. TotalPages is ceil(totalItemCount / pageSize).
func NewPaginationMetadata(totalItemCount, pageSize, currentPage int) PaginationMetadata {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItemCount + pageSize - 1) / pageSize
	}
	return PaginationMetadata{
		TotalItemCount: totalItemCount,
		TotalPages:     totalPages,
		PageSize:       pageSize,
		CurrentPage:    currentPage,
	}
}
