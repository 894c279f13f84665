package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	mongoclient "vid-pulse/internal/clients/mongo"
	"vid-pulse/internal/config"
	"vid-pulse/internal/logger"
	"vid-pulse/internal/services/users"
	"vid-pulse/internal/utils/crypto"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	nUsers  = flag.Int("users", envInt("USERS", 20), "How many users to create")
	nVideos = flag.Int("videos", envInt("VIDEOS", 100), "How many videos to create")
	pass    = flag.String("pass", env("PASSWORD", "Password123"), "Password shared by all seeded users")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscan(v, &i); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	logg, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, db, err := mongoclient.Init(ctx, cfg, logg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	defer func() { _ = mongoclient.Shutdown(ctx) }()

	fmt.Printf("Seeding %d users and %d videos into %s\n", *nUsers, *nVideos, db.Name())

	userIDs, err := seedUsers(ctx, db, cfg.BcryptCost, *nUsers)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	videoIDs, err := seedVideos(ctx, db, userIDs, *nVideos)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := seedSubscriptionsAndHistory(ctx, db, userIDs, videoIDs); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – users --------------------------------------------------------------
func seedUsers(ctx context.Context, db *mongo.Database, bcryptCost, total int) ([]bson.ObjectID, error) {
	hash, err := crypto.HashPassword(*pass, bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ids := make([]bson.ObjectID, 0, total)
	docs := make([]any, 0, total)
	for i := 0; i < total; i++ {
		u := users.User{
			ID:           bson.NewObjectID(),
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:        fmt.Sprintf("seed%d.%s", i, gofakeit.Email()),
			FullName:     gofakeit.Name(),
			AvatarURL:    gofakeit.ImageURL(200, 200),
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		ids = append(ids, u.ID)
		docs = append(docs, u)
	}

	if _, err := db.Collection("users").InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert users: %w", err)
	}
	fmt.Printf("  … %d users\n", total)
	return ids, nil
}

// ----------------------------------------------------------------------------
// Step 2 – videos --------------------------------------------------------------
func seedVideos(ctx context.Context, db *mongo.Database, owners []bson.ObjectID, total int) ([]bson.ObjectID, error) {
	now := time.Now().UTC()
	ids := make([]bson.ObjectID, 0, total)
	docs := make([]any, 0, total)
	for i := 0; i < total; i++ {
		v := users.Video{
			ID:           bson.NewObjectID(),
			OwnerID:      owners[gofakeit.Number(0, len(owners)-1)],
			Title:        gofakeit.Sentence(4),
			Description:  gofakeit.Paragraph(1, 2, 20, " "),
			VideoURL:     gofakeit.URL(),
			ThumbnailURL: gofakeit.ImageURL(640, 360),
			DurationSec:  float64(gofakeit.Number(30, 3600)),
			Views:        int64(gofakeit.Number(0, 100000)),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		ids = append(ids, v.ID)
		docs = append(docs, v)
	}

	if _, err := db.Collection("videos").InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("insert videos: %w", err)
	}
	fmt.Printf("  … %d videos\n", total)
	return ids, nil
}

// ----------------------------------------------------------------------------
// Step 3 – subscriptions + watch history ---------------------------------------
func seedSubscriptionsAndHistory(ctx context.Context, db *mongo.Database, userIDs, videoIDs []bson.ObjectID) error {
	now := time.Now().UTC()
	subs := make([]any, 0)
	for _, subscriber := range userIDs {
		// Each user subscribes to a handful of random channels.
		for n := gofakeit.Number(1, 5); n > 0; n-- {
			channel := userIDs[gofakeit.Number(0, len(userIDs)-1)]
			if channel == subscriber {
				continue
			}
			subs = append(subs, users.Subscription{
				ID:           bson.NewObjectID(),
				SubscriberID: subscriber,
				ChannelID:    channel,
				CreatedAt:    now,
			})
		}
	}
	if len(subs) > 0 {
		if _, err := db.Collection("subscriptions").InsertMany(ctx, subs); err != nil {
			return fmt.Errorf("insert subscriptions: %w", err)
		}
	}
	fmt.Printf("  … %d subscriptions\n", len(subs))

	usersColl := db.Collection("users")
	for _, id := range userIDs {
		history := make([]bson.ObjectID, 0)
		for n := gofakeit.Number(0, 8); n > 0; n-- {
			history = append(history, videoIDs[gofakeit.Number(0, len(videoIDs)-1)])
		}
		if len(history) == 0 {
			continue
		}
		if _, err := usersColl.UpdateByID(ctx, id, bson.M{"$set": bson.M{"watch_history": history}}); err != nil {
			return fmt.Errorf("set watch history: %w", err)
		}
	}
	fmt.Println("  … watch histories")
	return nil
}
