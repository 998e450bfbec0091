// Package graphstore — хранилище на Neo4j с теми же портами, что и GORM-репозитории.
//
// Граф:
//
//	(:Business)-[:OFFERS]->(:BookableItem)
//	(:Business)-[:HAS_HOURS]->(:BusinessHours)
//	(:Booking)-[:AT]->(:Business), (:Booking)-[:FOR_ITEM]->(:BookableItem)
//	(:BookingEvent)-[:ABOUT]->(:Booking)
//
// Идентификаторы дублируются свойствами (business_id, bookable_item_id),
// чтобы фильтры шли по индексам без обхода связей.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Leganyst/booking-core/internal/config"
	"github.com/Leganyst/booking-core/internal/repository"
)

type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open подключается к Neo4j и проверяет соединение.
func Open(ctx context.Context, cfg config.Neo4jConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Store{driver: driver, database: cfg.Database}, nil
}

var schema = []string{
	"CREATE CONSTRAINT business_id IF NOT EXISTS FOR (b:Business) REQUIRE b.id IS UNIQUE",
	"CREATE CONSTRAINT bookable_item_id IF NOT EXISTS FOR (i:BookableItem) REQUIRE i.id IS UNIQUE",
	"CREATE CONSTRAINT business_hours_id IF NOT EXISTS FOR (h:BusinessHours) REQUIRE h.id IS UNIQUE",
	"CREATE CONSTRAINT booking_id IF NOT EXISTS FOR (bk:Booking) REQUIRE bk.id IS UNIQUE",
	"CREATE CONSTRAINT booking_event_id IF NOT EXISTS FOR (e:BookingEvent) REQUIRE e.id IS UNIQUE",
	"CREATE INDEX booking_business_start IF NOT EXISTS FOR (bk:Booking) ON (bk.business_id, bk.start_datetime)",
	"CREATE INDEX booking_item IF NOT EXISTS FOR (bk:Booking) ON (bk.bookable_item_id)",
	"CREATE INDEX hours_scope IF NOT EXISTS FOR (h:BusinessHours) ON (h.business_id, h.day_of_week)",
}

// EnsureSchema создаёт ограничения уникальности и индексы, если их ещё нет.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.exec().run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

// Set собирает набор репозиториев поверх драйвера.
func (s *Store) Set() repository.Set {
	r := s.exec()
	return repository.Set{
		Businesses: &businessRepo{r: r},
		Items:      &itemRepo{r: r},
		Hours:      &hoursRepo{r: r},
		Bookings:   &bookingRepo{r: r, store: s},
		Pinger:     s,
		Close:      s.Close,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) exec() runner {
	return driverRunner{driver: s.driver, database: s.database}
}

// runner выполняет один Cypher-запрос и возвращает все записи.
type runner interface {
	run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (r driverRunner) run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.database),
	)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// txRunner выполняет запросы внутри управляемой транзакции.
type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r txRunner) run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := r.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Collect(ctx)
}
