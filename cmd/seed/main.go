// Command seed signs in with an existing account and fills the catalog with
// the games listed in a JSON file, each with its cover image and optional
// reviews. It goes through the same services as the web server.
//
//	SEED_EMAIL=me@example.com SEED_PASSWORD=secret go run ./cmd/seed -file seed/games.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dom/game-review-catalog/internal/config"
	"github.com/dom/game-review-catalog/internal/refresh"
	"github.com/dom/game-review-catalog/internal/repository/rest"
	"github.com/dom/game-review-catalog/internal/service"
	"github.com/dom/game-review-catalog/internal/session"
	"github.com/dom/game-review-catalog/internal/supabase"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type seedReview struct {
	Score      int    `json:"score"`
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
}

type seedGame struct {
	Title       string       `json:"title"`
	Platform    string       `json:"platform"`
	Genre       string       `json:"genre"`
	ReleaseDate string       `json:"release_date"`
	Cover       string       `json:"cover"`
	Reviews     []seedReview `json:"reviews"`
}

func loadGames(path string) ([]seedGame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var games []seedGame
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return games, nil
}

func openCover(path string) (*service.Upload, func() error, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{
		Filename:    filepath.Base(path),
		ContentType: mt.String(),
		Data:        f,
	}, f.Close, nil
}

func main() {
	file := flag.String("file", "seed/games.json", "JSON list of games to create")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	email, password := os.Getenv("SEED_EMAIL"), os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD are required")
	}

	games, err := loadGames(*file)
	if err != nil {
		log.Fatalf("failed to read seed file: %v", err)
	}

	client, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey, Timeout: cfg.BackendTimeout})
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}
	repos := rest.NewRepositories(client, rest.Tables{Games: cfg.GamesTable, Reviews: cfg.ReviewsTable})
	services := service.NewServices(repos, service.Buckets{
		Covers:      cfg.CoversBucket,
		Screenshots: cfg.ScreenshotsBucket,
	}, refresh.NewSignal(), log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Signing in as %s...\n", email)
	sess, err := services.Auth.SignIn(ctx, service.Credentials{Email: email, Password: password})
	if err != nil {
		log.Fatalf("sign in failed: %v", err)
	}
	ctx = session.WithSession(ctx, sess)
	defer services.Auth.SignOut(context.Background(), sess)

	base := filepath.Dir(*file)
	created, reviews := 0, 0
	for _, g := range games {
		input := service.CreateGameInput{Title: g.Title, Platform: g.Platform, Genre: g.Genre}
		if g.ReleaseDate != "" {
			t, err := time.Parse("2006-01-02", g.ReleaseDate)
			if err != nil {
				log.Fatalf("%s: bad release_date %q", g.Title, g.ReleaseDate)
			}
			d := datatypes.Date(t)
			input.ReleaseDate = &d
		}

		cover, closeCover, err := openCover(filepath.Join(base, g.Cover))
		if err != nil {
			log.Fatalf("%s: cannot open cover: %v", g.Title, err)
		}
		game, err := services.Game.Create(ctx, input, cover)
		closeCover()
		if err != nil {
			log.Fatalf("%s: create failed: %v", g.Title, err)
		}
		created++
		fmt.Printf("  ✓ %s (%s)\n", game.Title, game.ID)

		for _, r := range g.Reviews {
			_, err := services.Review.Create(ctx, service.CreateReviewInput{
				GameID:     game.ID,
				Score:      r.Score,
				Strengths:  r.Strengths,
				Weaknesses: r.Weaknesses,
			}, nil)
			if err != nil {
				log.Fatalf("%s: review failed: %v", g.Title, err)
			}
			reviews++
		}
	}

	fmt.Println("\n============================================================")
	fmt.Printf("SEED COMPLETE: %d games, %d reviews\n", created, reviews)
	fmt.Println("============================================================")
}
