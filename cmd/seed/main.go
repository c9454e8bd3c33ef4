// Command seed migrates the schema and fills the database with realistic
// development data: accounts, follow edges, posts, comments, messages.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/auth"
	"github.com/wyejay/MedPeer/internal/db"
	"github.com/wyejay/MedPeer/internal/models"
	"github.com/wyejay/MedPeer/pkg/config"
	"github.com/wyejay/MedPeer/pkg/logging"
)

var roles = []string{
	models.RoleStudent,
	models.RoleDoctor,
	models.RoleNurse,
	models.RolePharmacist,
	models.RoleLabScientist,
	models.RoleAlliedHealth,
}

var postTypes = []string{
	models.PostTypeNote,
	models.PostTypeQuestion,
	models.PostTypeAnnouncement,
	models.PostTypeResource,
}

func main() {
	userCount := flag.Int("users", 25, "number of accounts to create")
	postCount := flag.Int("posts", 100, "number of posts to create")
	migrateOnly := flag.Bool("migrate-only", false, "run schema migration and exit")
	seedValue := flag.Int64("seed", 0, "random seed; 0 uses the current time")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()
	logger := logging.GetLogger()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	logger.Info("Migrating schema")
	if err := database.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Follow{},
		&models.Tag{}, &models.Message{}, &models.Notification{},
		&models.Attachment{}, &models.ContentFlag{},
	); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	if *migrateOnly {
		logger.Info("Migration complete")
		return
	}

	if *seedValue != 0 {
		gofakeit.Seed(*seedValue)
		rand.Seed(*seedValue)
	}

	ctx := context.Background()
	repo := db.NewRepository(database.DB)
	users := db.NewUserRepository(repo)
	posts := db.NewPostRepository(repo)
	comments := db.NewCommentRepository(repo)
	follows := db.NewFollowRepository(repo)
	messages := db.NewMessageRepository(repo)

	// The shared dev password keeps local logins simple
	hash, err := auth.HashPassword("medpeer-dev", cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	logger.Info("Creating accounts", zap.Int("count", *userCount))
	accounts := make([]*models.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		created := gofakeit.DateRange(time.Now().AddDate(-2, 0, 0), time.Now())
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			Email:        fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			PasswordHash: hash,
			FirstName:    gofakeit.FirstName(),
			LastName:     gofakeit.LastName(),
			Role:         roles[rand.Intn(len(roles))],
			Institution:  sql.NullString{String: gofakeit.Company(), Valid: true},
			Specialty:    sql.NullString{String: gofakeit.JobTitle(), Valid: true},
			Bio:          sql.NullString{String: gofakeit.Sentence(12), Valid: true},
			PrivacyLevel: models.PrivacyPublic,
			IsActive:     true,
			CreatedAt:    created,
			UpdatedAt:    created,
			LastSeen:     gofakeit.DateRange(created, time.Now()),
		}
		if err := users.Create(ctx, user); err != nil {
			logger.Fatal("Failed to create user", zap.Error(err))
		}
		accounts = append(accounts, user)
	}

	logger.Info("Creating follow graph")
	for _, follower := range accounts {
		for _, followed := range accounts {
			if follower.ID == followed.ID || rand.Intn(4) != 0 {
				continue
			}
			follow := &models.Follow{
				FollowerID: follower.ID,
				FollowedID: followed.ID,
				CreatedAt:  gofakeit.DateRange(follower.CreatedAt, time.Now()),
			}
			if err := follows.Create(ctx, follow); err != nil {
				logger.Fatal("Failed to create follow", zap.Error(err))
			}
		}
	}

	logger.Info("Creating posts", zap.Int("count", *postCount))
	created := make([]*models.Post, 0, *postCount)
	for i := 0; i < *postCount; i++ {
		author := accounts[rand.Intn(len(accounts))]
		when := gofakeit.DateRange(author.CreatedAt, time.Now())
		post := &models.Post{
			UserID:    author.ID,
			Title:     gofakeit.Sentence(6),
			Body:      gofakeit.Paragraph(2, 4, 12, "\n\n"),
			PostType:  postTypes[rand.Intn(len(postTypes))],
			Views:     int64(rand.Intn(500)),
			Likes:     int64(rand.Intn(50)),
			CreatedAt: when,
			UpdatedAt: when,
		}
		if err := posts.Create(ctx, post); err != nil {
			logger.Fatal("Failed to create post", zap.Error(err))
		}
		created = append(created, post)
	}

	logger.Info("Creating comments")
	for _, post := range created {
		for i := 0; i < rand.Intn(5); i++ {
			commenter := accounts[rand.Intn(len(accounts))]
			when := gofakeit.DateRange(post.CreatedAt, time.Now())
			comment := &models.Comment{
				PostID:    post.ID,
				UserID:    commenter.ID,
				Body:      gofakeit.Sentence(15),
				CreatedAt: when,
				UpdatedAt: when,
			}
			if err := comments.Create(ctx, comment); err != nil {
				logger.Fatal("Failed to create comment", zap.Error(err))
			}
		}
	}

	logger.Info("Creating messages")
	for i := 0; i < *userCount*2; i++ {
		sender := accounts[rand.Intn(len(accounts))]
		recipient := accounts[rand.Intn(len(accounts))]
		if sender.ID == recipient.ID {
			continue
		}
		message := &models.Message{
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Body:        gofakeit.Sentence(10),
			IsRead:      rand.Intn(2) == 0,
			CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if err := messages.Create(ctx, message); err != nil {
			logger.Fatal("Failed to create message", zap.Error(err))
		}
	}

	logger.Info("Seed complete",
		zap.Int("users", len(accounts)),
		zap.Int("posts", len(created)),
	)
}
