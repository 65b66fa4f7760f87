package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
	redisrepo "github.com/okarpov/cinehall/internal/repository/redis"
	"github.com/okarpov/cinehall/internal/service"
	"github.com/okarpov/cinehall/internal/service/booking"
	"github.com/okarpov/cinehall/internal/service/catalog"
	"github.com/okarpov/cinehall/internal/service/rating"
	"github.com/okarpov/cinehall/internal/service/scheduling"
	"github.com/okarpov/cinehall/internal/service/seating"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// catalog
	r.GET("/movies", handleListMovies(svcs))
	r.POST("/movies", handleCreateMovie(svcs))
	r.GET("/movies/:id", handleGetMovie(svcs))
	r.PATCH("/movies/:id", handleUpdateMovie(svcs))
	r.DELETE("/movies/:id", handleRemoveMovie(svcs))

	r.POST("/persons", handleCreatePerson(svcs))
	r.GET("/persons/:id", handleGetPerson(svcs))
	r.PATCH("/persons/:id", handleUpdatePerson(svcs))
	r.DELETE("/persons/:id", handleRemovePerson(svcs))

	// scheduling
	r.POST("/movies/:id/sessions", handleCreateSession(svcs))
	r.GET("/movies/:id/sessions", handleMovieSessions(svcs))
	r.GET("/sessions/:id", handleGetSession(svcs))
	r.PATCH("/sessions/:id", handleUpdateSession(svcs))
	r.DELETE("/sessions/:id", handleRemoveSession(svcs))

	// seating
	r.POST("/sessions/:id/seats", handleCreateSeat(svcs))
	r.POST("/sessions/:id/seats/generate", handleGenerateSeats(svcs))
	r.GET("/sessions/:id/seats", handleSessionSeats(svcs))
	r.PATCH("/seats/:id", handleUpdateSeat(svcs))
	r.DELETE("/seats/:id", handleRemoveSeat(svcs))

	// booking
	r.POST("/tickets", handleBookTicket(svcs, idem))
	r.GET("/tickets", handleListTickets(svcs))
	r.GET("/tickets/:id", handleGetTicket(svcs))
	r.PATCH("/tickets/:id", handleUpdateTicket(svcs))
	r.DELETE("/tickets/:id", handleRemoveTicket(svcs))

	// rating
	r.POST("/movies/:id/reviews", handleCreateReview(svcs))
	r.GET("/movies/:id/reviews", handleMovieReviews(svcs))
	r.GET("/reviews/:id", handleGetReview(svcs))
	r.PATCH("/reviews/:id", handleUpdateReview(svcs))
	r.DELETE("/reviews/:id", handleRemoveReview(svcs))

	return r
}

// --- Catalog handlers ---

// @Summary  List movies
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200  {array}  domain.Movie
// @Router   /movies [get]
func handleListMovies(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)

		movies, err := svcs.Catalog.ListMovies(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, movies, "public, max-age=60", true)
	}
}

// @Summary  Create movie
// @Param    req body  CreateMovieRequest true "payload"
// @Success  201 {object} domain.Movie
// @Router   /movies [post]
func handleCreateMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMovieRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		var start *time.Time
		if req.Start != nil {
			t, err := parseRFC3339(*req.Start)
			if err != nil {
				badRequest(c, "invalid start (RFC3339)")
				return
			}
			start = &t
		}
		m, err := svcs.Catalog.CreateMovie(c.Request.Context(), domain.Movie{
			Title:  req.Title,
			Author: req.Author,
			Start:  start,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
	}
}

// @Summary  Get movie
// @Param    id  path  int  true  "Movie ID"
// @Success  200  {object}  domain.Movie
// @Failure  404  {object}  ErrorResponse
// @Router   /movies/{id} [get]
func handleGetMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		m, err := svcs.Catalog.GetMovie(c.Request.Context(), movieID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, m, "public, max-age=60", true)
	}
}

// @Summary  Update movie
// @Param    id  path  int  true  "Movie ID"
// @Param    req body  UpdateMovieRequest true "payload"
// @Success  200 {object} domain.Movie
// @Router   /movies/{id} [patch]
func handleUpdateMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateMovieRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		patch := catalog.MoviePatch{Title: req.Title, Author: req.Author}
		if req.Start != nil {
			t, err := parseRFC3339(*req.Start)
			if err != nil {
				badRequest(c, "invalid start (RFC3339)")
				return
			}
			patch.Start = &t
		}
		m, err := svcs.Catalog.UpdateMovie(c.Request.Context(), movieID, patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

// @Summary  Delete movie
// @Param    id  path  int  true  "Movie ID"
// @Success  204
// @Router   /movies/{id} [delete]
func handleRemoveMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Catalog.RemoveMovie(c.Request.Context(), movieID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Create person
// @Param    req body  CreatePersonRequest true "payload"
// @Success  201 {object} domain.Person
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /persons [post]
func handleCreatePerson(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svcs.Catalog.CreatePerson(c.Request.Context(), domain.Person{
			Name:    req.Name,
			Surname: req.Surname,
			Email:   req.Email,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary  Get person
// @Param    id  path  int  true  "Person ID"
// @Success  200 {object} domain.Person
// @Router   /persons/{id} [get]
func handleGetPerson(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		p, err := svcs.Catalog.GetPerson(c.Request.Context(), personID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Update person
// @Param    id  path  int  true  "Person ID"
// @Param    req body  UpdatePersonRequest true "payload"
// @Success  200 {object} domain.Person
// @Router   /persons/{id} [patch]
func handleUpdatePerson(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdatePersonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svcs.Catalog.UpdatePerson(c.Request.Context(), personID, catalog.PersonPatch{
			Name:    req.Name,
			Surname: req.Surname,
			Email:   req.Email,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Delete person
// @Param    id  path  int  true  "Person ID"
// @Success  204
// @Router   /persons/{id} [delete]
func handleRemovePerson(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Catalog.RemovePerson(c.Request.Context(), personID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Scheduling handlers ---

// @Summary  Create session
// @Param    id  path  int  true  "Movie ID"
// @Param    req body  CreateSessionRequest true "payload"
// @Success  201 {object} domain.Session
// @Failure  400 {object} ErrorResponse "invalid time window"
// @Router   /movies/{id}/sessions [post]
func handleCreateSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		start, err := parseRFC3339(req.Start)
		if err != nil {
			badRequest(c, "invalid start (RFC3339)")
			return
		}
		end, err := parseRFC3339(req.End)
		if err != nil {
			badRequest(c, "invalid end (RFC3339)")
			return
		}
		sess, err := svcs.Scheduling.Create(
			c.Request.Context(),
			movieID,
			start,
			end,
			req.Format,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, sess)
	}
}

// @Summary  List movie sessions with seat availability
// @Param    id    path   int     true  "Movie ID"
// @Param    date  query  string  false "calendar day filter (YYYY-MM-DD)"
// @Success  200 {array} domain.SessionWithAvailability
// @Router   /movies/{id}/sessions [get]
func handleMovieSessions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var day *time.Time
		if raw := c.Query("date"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				badRequest(c, "invalid date (YYYY-MM-DD)")
				return
			}
			day = &t
		}
		sessions, err := svcs.Scheduling.MovieSessions(c.Request.Context(), movieID, day)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, sessions, "public, max-age=15", true)
	}
}

// @Summary  Get session
// @Param    id  path  int  true  "Session ID"
// @Success  200 {object} domain.Session
// @Router   /sessions/{id} [get]
func handleGetSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		sess, err := svcs.Scheduling.Get(c.Request.Context(), sessionID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, sess, "public, max-age=60", true)
	}
}

// @Summary  Update session time window
// @Param    id  path  int  true  "Session ID"
// @Param    req body  UpdateSessionRequest true "payload"
// @Success  200 {object} domain.Session
// @Failure  400 {object} ErrorResponse "invalid time window"
// @Router   /sessions/{id} [patch]
func handleUpdateSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		var patch scheduling.WindowPatch
		if req.Start != nil {
			t, err := parseRFC3339(*req.Start)
			if err != nil {
				badRequest(c, "invalid start (RFC3339)")
				return
			}
			patch.Start = &t
		}
		if req.End != nil {
			t, err := parseRFC3339(*req.End)
			if err != nil {
				badRequest(c, "invalid end (RFC3339)")
				return
			}
			patch.End = &t
		}
		sess, err := svcs.Scheduling.Update(c.Request.Context(), sessionID, patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sess)
	}
}

// @Summary  Delete session and its seats
// @Param    id  path  int  true  "Session ID"
// @Success  204
// @Failure  409 {object} ErrorResponse "session has ticketed seats"
// @Router   /sessions/{id} [delete]
func handleRemoveSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Scheduling.Remove(c.Request.Context(), sessionID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Seating handlers ---

// @Summary  Create seat
// @Param    id  path  int  true  "Session ID"
// @Param    req body  CreateSeatRequest true "payload"
// @Success  201 {object} domain.Seat
// @Failure  400 {object} ErrorResponse "duplicate number/row"
// @Router   /sessions/{id}/seats [post]
func handleCreateSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateSeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		seat, err := svcs.Seating.Create(
			c.Request.Context(),
			sessionID,
			req.Number,
			req.Row,
			*req.Price,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, seat)
	}
}

// @Summary  Generate the default seat layout
// @Param    id  path  int  true  "Session ID"
// @Param    req body  GenerateSeatsRequest true "payload"
// @Success  201 {array} domain.Seat
// @Router   /sessions/{id}/seats/generate [post]
func handleGenerateSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req GenerateSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		seats, err := svcs.Seating.GenerateDefault(c.Request.Context(), sessionID, *req.Price)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, seats)
	}
}

// @Summary  List session seats
// @Param    id  path  int  true  "Session ID"
// @Success  200 {array} domain.Seat
// @Router   /sessions/{id}/seats [get]
func handleSessionSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seats, err := svcs.Seating.SessionSeats(c.Request.Context(), sessionID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, seats, "public, max-age=15", true)
	}
}

// @Summary  Update seat
// @Param    id  path  int  true  "Seat ID"
// @Param    req body  UpdateSeatRequest true "payload"
// @Success  200 {object} domain.Seat
// @Router   /seats/{id} [patch]
func handleUpdateSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateSeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		seat, err := svcs.Seating.Update(c.Request.Context(), seatID, seating.SeatPatch{
			Number: req.Number,
			Row:    req.Row,
			Price:  req.Price,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, seat)
	}
}

// @Summary  Delete seat
// @Param    id  path  int  true  "Seat ID"
// @Success  204
// @Failure  409 {object} ErrorResponse "seat is ticketed"
// @Router   /seats/{id} [delete]
func handleRemoveSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Seating.Remove(c.Request.Context(), seatID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Booking handlers ---

// @Summary  Book a ticket (idempotent)
// @Param    X-Person-ID     header  int     true  "caller identity"
// @Param    Idempotency-Key header  string  false "dedup key"
// @Param    req body  CreateTicketRequest true "payload"
// @Success  201 {object} domain.TicketView
// @Failure  400 {object} ErrorResponse "seats unavailable / mixed sessions / session ended"
// @Failure  409 {object} ErrorResponse "idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /tickets [post]
func handleBookTicket(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := personIDFromHeader(c)
		if !ok {
			return
		}
		var req CreateTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(personID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		ticket, err := svcs.Booking.Book(
			c.Request.Context(),
			personID,
			req.SeatIDs,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(ticket)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, ticket)
	}
}

// @Summary  List caller's tickets
// @Param    X-Person-ID  header  int  true  "caller identity"
// @Success  200 {array} domain.TicketView
// @Router   /tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := personIDFromHeader(c)
		if !ok {
			return
		}
		tickets, err := svcs.Booking.ListByPerson(c.Request.Context(), personID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tickets)
	}
}

// @Summary  Get ticket
// @Param    X-Person-ID  header  int  true  "caller identity"
// @Param    id  path  int  true  "Ticket ID"
// @Success  200 {object} domain.TicketView
// @Failure  403 {object} ErrorResponse
// @Router   /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := personIDFromHeader(c)
		if !ok {
			return
		}
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		ticket, err := svcs.Booking.Get(c.Request.Context(), personID, ticketID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ticket)
	}
}

// @Summary  Update ticket (reseat / pay / visit)
// @Param    X-Person-ID  header  int  true  "caller identity"
// @Param    id  path  int  true  "Ticket ID"
// @Param    req body  UpdateTicketRequest true "payload"
// @Success  200 {object} domain.TicketView
// @Failure  400 {object} ErrorResponse "seats unavailable / session ended"
// @Router   /tickets/{id} [patch]
func handleUpdateTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := personIDFromHeader(c)
		if !ok {
			return
		}
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		ticket, err := svcs.Booking.Update(c.Request.Context(), personID, ticketID, booking.TicketPatch{
			SeatIDs:   req.SeatIDs,
			IsPaid:    req.IsPaid,
			IsVisited: req.IsVisited,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ticket)
	}
}

// @Summary  Cancel ticket
// @Param    X-Person-ID  header  int  true  "caller identity"
// @Param    id  path  int  true  "Ticket ID"
// @Success  204
// @Router   /tickets/{id} [delete]
func handleRemoveTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		personID, ok := personIDFromHeader(c)
		if !ok {
			return
		}
		ticketID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Booking.Remove(c.Request.Context(), personID, ticketID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Rating handlers ---

// @Summary  Create review and refresh movie rating
// @Param    id  path  int  true  "Movie ID"
// @Param    req body  CreateReviewRequest true "payload"
// @Success  201 {object} domain.Review
// @Router   /movies/{id}/reviews [post]
func handleCreateReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		rv, err := svcs.Rating.CreateReview(c.Request.Context(), movieID, domain.Review{
			Author:      req.Author,
			Description: req.Description,
			Rating:      *req.Rating,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	}
}

// @Summary  List movie reviews
// @Param    id  path  int  true  "Movie ID"
// @Success  200 {array} domain.Review
// @Router   /movies/{id}/reviews [get]
func handleMovieReviews(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		reviews, err := svcs.Rating.MovieReviews(c.Request.Context(), movieID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, reviews, "public, max-age=60", true)
	}
}

// @Summary  Get review
// @Param    id  path  int  true  "Review ID"
// @Success  200 {object} domain.Review
// @Router   /reviews/{id} [get]
func handleGetReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		rv, err := svcs.Rating.Get(c.Request.Context(), reviewID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rv)
	}
}

// @Summary  Update review and refresh movie rating
// @Param    id  path  int  true  "Review ID"
// @Param    req body  UpdateReviewRequest true "payload"
// @Success  200 {object} domain.Review
// @Router   /reviews/{id} [patch]
func handleUpdateReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		rv, err := svcs.Rating.UpdateReview(c.Request.Context(), reviewID, rating.ReviewPatch{
			Author:      req.Author,
			Description: req.Description,
			Rating:      req.Rating,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rv)
	}
}

// @Summary  Delete review and refresh movie rating
// @Param    id  path  int  true  "Review ID"
// @Success  204
// @Router   /reviews/{id} [delete]
func handleRemoveReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Rating.RemoveReview(c.Request.Context(), reviewID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// personIDFromHeader resolves the caller from X-Person-ID. Authentication is
// handled upstream; the header is trusted here.
func personIDFromHeader(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader("X-Person-ID"))
	if raw == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing X-Person-ID"})
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid X-Person-ID"})
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// scheduling service
	case errors.Is(err, scheduling.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session start should be earlier than session end"})
	case errors.Is(err, scheduling.ErrInvalidStart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session cannot start earlier than the movie start date"})
	case errors.Is(err, scheduling.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie not found"})
	case errors.Is(err, scheduling.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.Is(err, scheduling.ErrHasTicketedSeats):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "session has ticketed seats"})
	// seating service
	case errors.Is(err, seating.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.Is(err, seating.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "seat not found"})
	case errors.Is(err, seating.ErrDuplicateSeat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "seat with this number and row already exists"})
	case errors.Is(err, seating.ErrSeatHasTicket):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat is ticketed"})
	case errors.Is(err, seating.ErrGenerateFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unable to generate default seats"})
	// booking service
	case errors.Is(err, booking.ErrNoSeats):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no seats selected"})
	case errors.Is(err, booking.ErrSeatsNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "some seats are not found"})
	case errors.Is(err, booking.ErrAlreadyBooked):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "seat is already booked"})
	case errors.Is(err, booking.ErrMixedSessions):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "seats must belong to the same session"})
	case errors.Is(err, booking.ErrSessionEnded):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session is ended"})
	case errors.Is(err, booking.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, booking.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "person not found"})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "no access"})
	// rating service
	case errors.Is(err, rating.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie not found"})
	case errors.Is(err, rating.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "review not found"})
	// catalog service
	case errors.Is(err, catalog.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie not found"})
	case errors.Is(err, catalog.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "person not found"})
	case errors.Is(err, catalog.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
	// repository fallbacks
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
