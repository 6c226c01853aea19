package model

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"`
}

type CreateCategoryReq struct {
	Name string `json:"name" validate:"required"`
}

type UpdateCategoryReq struct {
	Name string `json:"name" validate:"required"`
}
