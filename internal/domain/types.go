package domain

import "time"

// Movie carries the subset of catalog data the booking core depends on.
// Rating is derived from reviews and is nil until the first review lands.
// Start is nil for movies that have no scheduled screening yet.
type Movie struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Author string     `json:"author"`
	Rating *float64   `json:"rating"`
	Start  *time.Time `json:"start"`
}

type Person struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// Session is a scheduled screening of a movie. Start < End always holds
// for persisted sessions.
type Session struct {
	ID      int64     `json:"id"`
	MovieID int64     `json:"movie_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Format  string    `json:"format"`
}

// SessionWithAvailability carries a session together with the number of
// its seats that have no ticket attached.
type SessionWithAvailability struct {
	Session
	AvailableSeats int64 `json:"available_seats"`
}

// Seat is a bookable unit of session capacity. TicketID is nil while the
// seat is available; a non-nil TicketID means the seat is booked.
type Seat struct {
	ID        int64   `json:"id"`
	SessionID int64   `json:"session_id"`
	TicketID  *int64  `json:"ticket_id"`
	Price     float64 `json:"price"`
	Number    int     `json:"number"`
	Row       int     `json:"row"`
}

func (s Seat) Booked() bool { return s.TicketID != nil }

// Ticket binds a person to one or more seats of a single session.
// Discount is a whole percentage applied at booking time.
type Ticket struct {
	ID        int64     `json:"id"`
	PersonID  int64     `json:"person_id"`
	IsPaid    bool      `json:"is_paid"`
	IsVisited bool      `json:"is_visited"`
	IsMissed  bool      `json:"is_missed"`
	Discount  int       `json:"discount"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketView is the ticket as returned to its holder: the ticket row plus
// the seats it spans, their session and the movie being screened.
type TicketView struct {
	Ticket
	Seats   []Seat  `json:"seats"`
	Session Session `json:"session"`
	Movie   Movie   `json:"movie"`
}

type Review struct {
	ID          int64   `json:"id"`
	MovieID     int64   `json:"movie_id"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
}
