// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Yatube!Pass123"

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	FollowsPerUser  int
	// MaxDays spreads post timestamps over this many past days.
	MaxDays int
	Clean   bool
	// Groups are upserted before posts; nil means DefaultGroups.
	Groups []GroupFixture
}

// Summary counts what a run created.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seeder generates fake users, posts, comments and follow edges.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   time.Time
	cost  int
}

// NewSeeder returns a seeder whose output is determined by seed.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:    db,
		faker: gofakeit.New(seed),
		now:   time.Now().UTC(),
		cost:  bcrypt.DefaultCost,
	}
}

// Run populates the database.
func (s *Seeder) Run(opts Options) (Summary, error) {
	var summary Summary
	middleware.Logger.Info("seeding database",
		"users", opts.NumUsers, "posts", opts.NumPosts, "clean", opts.Clean)

	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return summary, err
		}
	}

	fixtures := opts.Groups
	if fixtures == nil {
		fixtures = DefaultGroups()
	}
	groups, err := Groups(s.db, fixtures)
	if err != nil {
		return summary, err
	}
	summary.Groups = len(groups)

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return summary, fmt.Errorf("failed to create users: %w", err)
	}
	summary.Users = len(users)

	posts, err := s.createPosts(users, groups, opts.NumPosts, opts.MaxDays)
	if err != nil {
		return summary, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)

	if summary.Comments, err = s.createComments(users, posts, opts.CommentsPerPost); err != nil {
		return summary, fmt.Errorf("failed to create comments: %w", err)
	}
	if summary.Follows, err = s.createFollows(users, opts.FollowsPerUser); err != nil {
		return summary, fmt.Errorf("failed to create follows: %w", err)
	}

	middleware.Logger.Info("seeding completed",
		"groups", summary.Groups, "users", summary.Users, "posts", summary.Posts,
		"comments", summary.Comments, "follows", summary.Follows)
	return summary, nil
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Image{}, &models.User{}, &models.Group{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers(n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.cost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		users = append(users, models.User{
			Username:  s.username(first, last, i),
			Email:     strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, i)),
			Password:  string(hashed),
			FirstName: first,
			LastName:  last,
		})
	}
	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// username builds a unique, valid username from a name and an index.
func (s *Seeder) username(first, last string, i int) string {
	base := strings.ToLower(first + last)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" {
		base = "user"
	}
	return fmt.Sprintf("%s%d", base, i)
}

func (s *Seeder) createPosts(users []models.User, groups []models.Group, n, maxDays int) ([]models.Post, error) {
	if n <= 0 || len(users) == 0 {
		return nil, nil
	}
	if maxDays <= 0 {
		maxDays = 90
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		createdAt := s.now.Add(-time.Duration(s.faker.Number(0, maxDays*24*60)) * time.Minute)
		post := models.Post{
			Text:      s.faker.Paragraph(1, s.faker.Number(1, 4), 12, "\n"),
			UserID:    author.ID,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		// About two thirds of posts belong to a group.
		if len(groups) > 0 && s.faker.Number(0, 2) > 0 {
			groupID := groups[s.faker.Number(0, len(groups)-1)].ID
			post.GroupID = &groupID
		}
		posts = append(posts, post)
	}
	if err := s.db.Omit(clause.Associations).CreateInBatches(&posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) createComments(users []models.User, posts []models.Post, perPost int) (int, error) {
	if perPost <= 0 || len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	comments := make([]models.Comment, 0, len(posts)*perPost)
	for _, post := range posts {
		for j := 0; j < s.faker.Number(0, perPost); j++ {
			author := users[s.faker.Number(0, len(users)-1)]
			comments = append(comments, models.Comment{
				Text:      s.faker.Sentence(s.faker.Number(3, 15)),
				UserID:    author.ID,
				PostID:    post.ID,
				CreatedAt: post.CreatedAt.Add(time.Duration(s.faker.Number(1, 600)) * time.Minute),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := s.db.Omit(clause.Associations).CreateInBatches(&comments, 200).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

func (s *Seeder) createFollows(users []models.User, perUser int) (int, error) {
	if perUser <= 0 || len(users) < 2 {
		return 0, nil
	}

	created := 0
	for _, follower := range users {
		targets := perUser
		if targets > len(users)-1 {
			targets = len(users) - 1
		}
		for j := 0; j < targets; j++ {
			followee := users[s.faker.Number(0, len(users)-1)]
			if followee.ID == follower.ID {
				continue
			}
			result := s.db.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID})
			if result.Error != nil {
				return created, result.Error
			}
			created += int(result.RowsAffected)
		}
	}
	return created, nil
}
