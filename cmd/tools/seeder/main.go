// Command seeder loads demo members and retail stock into a persistent salon store.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/store"
)

func main() {
	reset := flag.Bool("reset", false, "clear the store before seeding")
	flag.Parse()

	logger := obs.NewLogger("console", "info")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	p, closeFn := openPersister(ctx, cfg, logger)
	defer closeFn()

	st, err := store.Open(ctx, p, store.Options{Tiers: member.DefaultTiers(), WalkInLabel: cfg.WalkInLabel, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	if *reset {
		if err := st.Reset(ctx); err != nil {
			logger.Fatal().Err(err).Msg("reset store")
		}
	}

	joined := time.Now().In(cfg.Location)
	members := 0
	for _, m := range demoMembers(joined) {
		if _, ok := member.FindByID(st.Members(), m.ID); ok {
			continue
		}
		if _, err := st.SaveMember(ctx, m); err != nil {
			logger.Fatal().Err(err).Str("member_id", m.ID).Msg("seed member")
		}
		members++
	}
	products := 0
	for _, prod := range demoProducts() {
		if _, ok := catalog.FindProduct(st.Products(), prod.ID); ok {
			continue
		}
		if _, err := st.SaveProduct(ctx, prod); err != nil {
			logger.Fatal().Err(err).Str("product_id", prod.ID).Msg("seed product")
		}
		products++
	}
	logger.Info().Int("members", members).Int("products", products).Int64("revision", st.Revision()).Msg("seeding complete")
}

func openPersister(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Persister, func()) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		rdb := redis.NewClient(opt)
		return store.RedisPersister{Client: rdb, Prefix: cfg.StoreKeyPrefix}, func() { _ = rdb.Close() }
	case config.BackendPostgres:
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		return store.PostgresPersister{Pool: pool}, pool.Close
	default:
		logger.Error().Str("backend", cfg.StoreBackend).Msg("seeding needs STORE_BACKEND=redis or postgres")
		os.Exit(1)
		return nil, nil
	}
}

func demoMembers(joined time.Time) []member.Member {
	vip := pricing.RateFromFloat(0.75)
	return []member.Member{
		{ID: "m1", Name: "王小美", Phone: "13800138000", Balance: 2000, TierID: "tier_gold", JoinDate: joined, Notes: "喜欢裸色系"},
		{ID: "m2", Name: "李思思", Phone: "13912345678", Balance: 500, TierID: "tier_silver", JoinDate: joined},
		{ID: "m3", Name: "张婷", Phone: "13700001111", Balance: 8800, TierID: "tier_black", JoinDate: joined, LashArchive: "自然款 9-11mm"},
		{ID: "m4", Name: "陈悦", Phone: "13655556666", Balance: 1200, TierID: "tier_platinum", JoinDate: joined, CustomDiscount: &vip},
	}
}

func demoProducts() []catalog.Product {
	item := func(id, name string, cost, sell pricing.Money, stock int, cat catalog.Category) catalog.Product {
		return catalog.Product{
			ID:             id,
			Name:           name,
			CostPrice:      cost,
			SellingPrice:   sell,
			Stock:          stock,
			Image:          catalog.DefaultProductImage,
			Category:       cat,
			CommissionRate: catalog.DefaultProductCommission,
		}
	}
	return []catalog.Product{
		item("p1", "粉晶手串", 80, 268, 5, catalog.CategoryCrystal),
		item("p2", "紫水晶簇", 150, 458, 2, catalog.CategoryCrystal),
		item("p3", "玫瑰护手霜", 35, 128, 12, catalog.CategorySupplies),
		item("p4", "甲缘营养油", 20, 88, 8, catalog.CategorySupplies),
	}
}
