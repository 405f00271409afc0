package seed

import (
	"fmt"
	"log"
	"math/rand"

	"iforum/internal/models"

	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	Users    int
	Posts    int
	Comments int
	Clean    bool
}

// DefaultOptions returns a mid-sized demo dataset.
func DefaultOptions() Options {
	return Options{Users: 20, Posts: 80, Comments: 200, Clean: true}
}

// Seed populates the database with fake users, posts, tags and comments.
func Seed(db *gorm.DB, opts Options) error {
	if opts.Clean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	factory, err := NewFactory(db)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users (password: %s)", len(users), DefaultPassword)

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))

	if len(posts) > 0 {
		for i := 0; i < opts.Comments; i++ {
			creator := users[rand.Intn(len(users))]
			post := posts[rand.Intn(len(posts))]
			if _, err := factory.CreateComment(creator, post.ID); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
		log.Printf("seeded %d comments", opts.Comments)
	}

	return nil
}

// clearData removes all seedable data. Order respects foreign keys.
func clearData(db *gorm.DB) error {
	tables := []string{"comments", "galleries", "post_tags", "posts", "tags", "author_profiles", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
