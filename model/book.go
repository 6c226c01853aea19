package model

type Book struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Description  string  `json:"description"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	CategoryName *string `json:"category_name,omitempty"`
	Quantity     int64   `json:"quantity"`
	Available    int64   `json:"available"`
}

// CreateBookReq represents the admin book creation payload.
// New books start with all copies available.
type CreateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
}

// UpdateBookReq carries partial updates; nil fields are left untouched.
type UpdateBookReq struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Quantity    *int64  `json:"quantity" validate:"omitempty,gte=0"`
}
