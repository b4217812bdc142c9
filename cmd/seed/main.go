package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"studiofinder/internal/config"
	"studiofinder/internal/database"
	"studiofinder/internal/discovery"
	"studiofinder/internal/logging"
	"studiofinder/internal/modules/catalog"

	"github.com/google/uuid"
)

var boroughs = []string{"Brooklyn, NY", "Manhattan, NY", "Queens, NY", "Bronx, NY", "Staten Island, NY"}

func main() {
	extra := flag.Int("extra", 0, "number of random studios to add around New York")
	reset := flag.Bool("reset", false, "delete existing studios first")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, os.Stderr)
	log := logging.New("seed")

	db, err := database.Connect(cfg.DatabaseURL, logging.New("database"))
	if err != nil {
		log.Error("db connection failed", "error", err)
		os.Exit(1)
	}

	repo := catalog.NewRepository(db)
	log.Info("running AutoMigrate")
	if err := repo.AutoMigrate(); err != nil {
		log.Error("AutoMigrate failed", "error", err)
		os.Exit(1)
	}

	if *reset {
		log.Info("cleaning old data")
		db.Exec("DELETE FROM studio_equipment")
		db.Exec("DELETE FROM studios")
	}

	studios := catalog.SampleStudios()
	rng := rand.New(rand.NewPCG(uint64(len(studios)), uint64(*extra)))
	for i := 0; i < *extra; i++ {
		studios = append(studios, randomStudio(rng, i))
	}

	ctx := context.Background()
	if err := catalog.NewService(repo).Import(ctx, studios); err != nil {
		log.Error("seeding studios failed", "error", err)
		os.Exit(1)
	}

	log.Info("seed completed", "studios", len(studios), "database", cfg.DatabaseURL)
}

func randomStudio(rng *rand.Rand, i int) *discovery.Studio {
	tags := append([]string{}, discovery.EquipmentOptions...)
	rng.Shuffle(len(tags), func(a, b int) { tags[a], tags[b] = tags[b], tags[a] })

	return &discovery.Studio{
		ID:       uuid.NewString(),
		Name:     fmt.Sprintf("Studio %d", i+1),
		Location: boroughs[rng.IntN(len(boroughs))],
		Coordinates: discovery.Coordinates{
			Lng: round(-74.05+rng.Float64()*0.3, 4),
			Lat: round(40.60+rng.Float64()*0.25, 4),
		},
		PricePerHour: float64(25 + rng.IntN(16)*5),
		Rating:       round(3.5+rng.Float64()*1.5, 1),
		ReviewCount:  rng.IntN(200),
		Equipment:    tags[:2+rng.IntN(3)],
		MaxCapacity:  discovery.CapacityOptions[rng.IntN(len(discovery.CapacityOptions))],
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
