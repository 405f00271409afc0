// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"math/rand"
	"strings"
	"time"

	"iforum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password assigned to every seeded
// account so developers can log in as any of them.
const DefaultPassword = "Seed-password-1234"

var tagPool = []string{
	"go", "databases", "web", "testing", "deployment",
	"performance", "tooling", "design", "opinion", "tutorial",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	rng          *rand.Rand
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt hash shared by all seeded users keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}, nil
}

// CreateUser persists a fake user with an author profile.
func (f *Factory) CreateUser() (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Username: strings.ToLower(first + "." + last),
		Email:    strings.ToLower(gofakeit.Username() + "@" + gofakeit.DomainName()),
		Password: f.passwordHash,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}

	profile := &models.AuthorProfile{
		UserID: user.ID,
		Bio:    gofakeit.Sentence(12),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile

	return user, nil
}

// CreatePost persists a fake post for the given author, attaching a random
// subset of the tag pool and publishing roughly two thirds of posts with a
// realistic created_at spread.
func (f *Factory) CreatePost(author *models.User) (*models.Post, error) {
	post := &models.Post{
		AuthorID: author.ID,
		Title:    gofakeit.Sentence(5),
		Content:  gofakeit.Paragraph(2, 4, 8, "\n"),
	}

	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	created := time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.CreatedAt = created

	if f.rng.Intn(3) < 2 {
		published := created.Add(time.Duration(f.rng.Intn(48)) * time.Hour)
		post.PublishedAt = &published
		post.Views = f.rng.Intn(500)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}

	tags, err := f.pickTags()
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := f.db.Model(post).Association("Tags").Replace(tags); err != nil {
			return nil, err
		}
	}

	return post, nil
}

// CreateComment persists a fake comment from the given user on a post.
func (f *Factory) CreateComment(creator *models.User, postID uint) (*models.Comment, error) {
	comment := &models.Comment{
		CreatorID:   creator.ID,
		Content:     gofakeit.Sentence(10 + f.rng.Intn(15)),
		ContentType: models.EntityKindPost,
		ObjectID:    postID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (f *Factory) pickTags() ([]models.Tag, error) {
	count := f.rng.Intn(4) // 0..3 tags
	picked := make(map[string]struct{}, count)
	tags := make([]models.Tag, 0, count)
	for len(tags) < count {
		value := tagPool[f.rng.Intn(len(tagPool))]
		if _, dup := picked[value]; dup {
			continue
		}
		picked[value] = struct{}{}

		var tag models.Tag
		if err := f.db.Where(models.Tag{Value: value}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
