package model

type PagedResult[T any] struct {
	Results          []T   `json:"results"`
	TotalRecordCount int64 `json:"total_record_count"`
}
