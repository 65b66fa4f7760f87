package service

import (
	postgres "github.com/okarpov/cinehall/internal/repository/postgres"
	redis "github.com/okarpov/cinehall/internal/repository/redis"
	"github.com/okarpov/cinehall/internal/service/booking"
	"github.com/okarpov/cinehall/internal/service/catalog"
	"github.com/okarpov/cinehall/internal/service/rating"
	"github.com/okarpov/cinehall/internal/service/scheduling"
	"github.com/okarpov/cinehall/internal/service/seating"
)

type Services struct {
	Scheduling *scheduling.Service
	Seating    *seating.Service
	Booking    *booking.Service
	Rating     *rating.Service
	Catalog    *catalog.Service
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.SessionsPubSub,
	limiter *redis.SlidingWindowLimiter,
) *Services {
	return &Services{
		Scheduling: scheduling.New(store, cache, pubsub),
		Seating:    seating.New(store, cache, pubsub),
		Booking:    booking.New(store, cache, pubsub, limiter),
		Rating:     rating.New(store),
		Catalog:    catalog.New(store),
	}
}
