package httpgin

import "time"

type CreateSessionRequest struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Format string `json:"format" binding:"required"`
}

type UpdateSessionRequest struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type CreateSeatRequest struct {
	Number int      `json:"number" binding:"required,gt=0"`
	Row    int      `json:"row" binding:"required,gt=0"`
	Price  *float64 `json:"price" binding:"required,gte=0"`
}

type UpdateSeatRequest struct {
	Number *int     `json:"number" binding:"omitempty,gt=0"`
	Row    *int     `json:"row" binding:"omitempty,gt=0"`
	Price  *float64 `json:"price" binding:"omitempty,gte=0"`
}

type GenerateSeatsRequest struct {
	Price *float64 `json:"price" binding:"required,gte=0"`
}

type CreateTicketRequest struct {
	SeatIDs []int64 `json:"seat_ids" binding:"required,min=1,dive,required"`
}

type UpdateTicketRequest struct {
	SeatIDs   []int64 `json:"seat_ids" binding:"omitempty,min=1,dive,required"`
	IsPaid    *bool   `json:"is_paid"`
	IsVisited *bool   `json:"is_visited"`
}

type CreateReviewRequest struct {
	Author      string   `json:"author" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Rating      *float64 `json:"rating" binding:"required,gte=0,lte=10"`
}

type UpdateReviewRequest struct {
	Author      *string  `json:"author"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating" binding:"omitempty,gte=0,lte=10"`
}

type CreateMovieRequest struct {
	Title  string  `json:"title" binding:"required"`
	Author string  `json:"author" binding:"required"`
	Start  *string `json:"start"`
}

type UpdateMovieRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Start  *string `json:"start"`
}

type CreatePersonRequest struct {
	Name    string `json:"name" binding:"required"`
	Surname string `json:"surname" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

type UpdatePersonRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email" binding:"omitempty,email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
