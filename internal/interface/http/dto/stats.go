package dto

// PopularBooksRequest 热门图书数量，默认10
type PopularBooksRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}
