package main

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parley-dm/parley/internal/config"
	"github.com/parley-dm/parley/internal/device"
	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/engine"
	"github.com/parley-dm/parley/internal/nlg"
	"github.com/parley-dm/parley/internal/nlu"
	"github.com/parley-dm/parley/internal/ontology"
	"github.com/parley-dm/parley/internal/session"
	"github.com/parley-dm/parley/internal/store"
)

// buildStore opens the configured session store. The returned cleanup
// func is always safe to call.
func buildStore(ctx context.Context) (domain.SessionStore, func(), error) {
	switch backend := config.StoreBackend(); backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := store.OpenSQLite(config.SQLitePath())
		if err != nil {
			return nil, func() {}, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, config.DatabaseURL())
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
		}
		s := store.NewPostgresStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("migrate postgres store: %w", err)
		}
		return s, pool.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown store backend %q", backend)
	}
}

// buildManager wires the full dialogue stack for the configured domain.
func buildManager(ctx context.Context) (*session.Manager, *ontology.Domain, func(), error) {
	dom, err := ontology.Load(resolveDomainPath())
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("load domain: %w", err)
	}

	interpreter, err := nlu.NewInterpreter(config.NLUProvider(), dom)
	if err != nil {
		return nil, nil, func() {}, err
	}
	renderer, err := nlg.NewRenderer(config.NLGProvider())
	if err != nil {
		return nil, nil, func() {}, err
	}

	st, cleanup, err := buildStore(ctx)
	if err != nil {
		return nil, nil, cleanup, err
	}

	eng := engine.New(
		engine.StandardRules(dom),
		interpreter,
		renderer,
		logger,
		engine.WithMaxIterations(config.MaxIterations()),
		engine.WithGenerators(engine.StandardGenerators(dom)...),
	)

	registry := device.NewRegistry(logger)
	registerDemoDevices(registry)

	mgr := session.NewManager(eng, st, registry, config.AgentID(), logger)
	return mgr, dom, cleanup, nil
}

// registerDemoDevices installs handlers for the actions of the bundled
// travel domain. Hosts embedding the library register their own.
func registerDemoDevices(r *device.Registry) {
	r.Register("book_trip", func(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
		dest := req.Args["destination"]
		if dest == "" {
			return domain.ActionResult{Success: false, Output: "no destination to book"}, nil
		}
		return domain.ActionResult{
			Success: true,
			Output:  fmt.Sprintf("price = %d EUR", quotePrice(dest, req.Args["class"])),
		}, nil
	})
}

// quotePrice derives a stable fake price from the booking parameters so
// repeat runs quote the same trip the same way.
func quotePrice(destination, class string) int {
	h := fnv.New32a()
	h.Write([]byte(destination))
	base := 120 + int(h.Sum32()%600)
	switch class {
	case "business":
		return base * 3
	case "first":
		return base * 5
	default:
		return base
	}
}
