//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"revista/backend/internal/domain/auth"
	"revista/backend/internal/domain/catalog"
	"revista/backend/internal/domain/engagement"
)

func setupDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("revista_test"),
		tcpostgres.WithUsername("revista"),
		tcpostgres.WithPassword("revista"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := New(ctx, dsn, Options{MaxConns: 4, StatementTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	users := NewUserRepository(db.Pool)
	publishers := NewPublisherRepository(db.Pool)
	titles := NewTitleRepository(db.Pool)
	issues := NewIssueRepository(db.Pool)
	ratings := NewRatingRepository(db.Pool)
	comments := NewCommentRepository(db.Pool)
	favorites := NewFavoriteRepository(db.Pool)

	user := &auth.User{Name: "Ann Reader", Email: "ann@example.com", Role: auth.RoleReader, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, user))

	t.Run("email uniqueness ignores case", func(t *testing.T) {
		dup := &auth.User{Name: "Ann", Email: "ANN@example.com", Role: auth.RoleReader, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
		assert.ErrorIs(t, users.Create(ctx, dup), auth.ErrEmailExists)

		found, err := users.GetByEmail(ctx, "Ann@Example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("update keeps the hash unless a new one is given", func(t *testing.T) {
		renamed := &auth.User{ID: user.ID, Name: "Ann R", Email: user.Email, Role: auth.RoleReader, UpdatedAt: now}
		require.NoError(t, users.Update(ctx, renamed))
		found, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann R", found.Name)
		assert.Equal(t, "x", found.PasswordHash)

		renamed.PasswordHash = "y"
		require.NoError(t, users.Update(ctx, renamed))
		found, err = users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "y", found.PasswordHash)
	})

	publisher := &catalog.Publisher{Name: "Marvel", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, publishers.Create(ctx, publisher))
	assert.ErrorIs(t, publishers.Create(ctx, &catalog.Publisher{Name: "Marvel", CreatedAt: now, UpdatedAt: now}), catalog.ErrDuplicatePublisher)

	title := &catalog.Title{PublisherID: publisher.ID, Name: "Spider-Man", Genre: "superhero", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, titles.Create(ctx, title))
	assert.ErrorIs(t, titles.Create(ctx, &catalog.Title{PublisherID: 9999, Name: "Ghost", CreatedAt: now, UpdatedAt: now}), catalog.ErrPublisherNotFound)

	newIssue := func(number string, year int) *catalog.Issue {
		return &catalog.Issue{
			TitleID:         title.ID,
			IssueNumber:     catalog.IssueNumber(number),
			PublicationYear: year,
			CoverImageURL:   "https://cdn.example.com/" + number + ".jpg",
			PDFFileURL:      "https://cdn.example.com/" + number + ".pdf",
			PageCount:       32,
			Author:          "Stan Lee",
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}
	first := newIssue("1", 1963)
	second := newIssue("2", 1964)
	require.NoError(t, issues.Create(ctx, first))
	require.NoError(t, issues.Create(ctx, second))
	assert.ErrorIs(t, issues.Create(ctx, newIssue("1", 1970)), catalog.ErrDuplicateIssue)

	t.Run("deletes are blocked by dependants", func(t *testing.T) {
		assert.ErrorIs(t, publishers.Delete(ctx, publisher.ID), catalog.ErrPublisherHasTitles)
		assert.ErrorIs(t, titles.Delete(ctx, title.ID), catalog.ErrTitleHasIssues)
	})

	t.Run("issue listing and search", func(t *testing.T) {
		items, total, err := issues.List(ctx, catalog.IssueFilter{TitleID: title.ID, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, items, 1)
		assert.Equal(t, second.ID, items[0].ID)
		assert.Equal(t, "Marvel", items[0].PublisherName)

		found, err := issues.Search(ctx, "spider", 10)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		none, err := issues.Search(ctx, "100%", 10)
		require.NoError(t, err)
		assert.Empty(t, none)

		similar, err := issues.Similar(ctx, first, 4)
		require.NoError(t, err)
		require.Len(t, similar, 1)
		assert.Equal(t, second.ID, similar[0].ID)
	})

	t.Run("ratings upsert per user", func(t *testing.T) {
		require.NoError(t, ratings.Upsert(ctx, &engagement.Rating{UserID: user.ID, IssueID: first.ID, Value: 3, CreatedAt: now, UpdatedAt: now}))
		require.NoError(t, ratings.Upsert(ctx, &engagement.Rating{UserID: user.ID, IssueID: first.ID, Value: 5, CreatedAt: now, UpdatedAt: now}))

		list, err := ratings.ListByIssue(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 5, list[0].Value)
		assert.Equal(t, "Ann Reader", list[0].UserName)

		issue, err := issues.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, issue.AverageRating, 0.001)
		assert.Equal(t, 1, issue.RatingCount)

		err = ratings.Upsert(ctx, &engagement.Rating{UserID: user.ID, IssueID: 9999, Value: 4, CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, catalog.ErrIssueNotFound)
	})

	t.Run("comments and favorites", func(t *testing.T) {
		comment := &engagement.Comment{UserID: user.ID, IssueID: first.ID, Content: "Classic", CreatedAt: now}
		require.NoError(t, comments.Create(ctx, comment))
		assert.Equal(t, "Ann Reader", comment.UserName)

		page, total, err := comments.ListByIssue(ctx, first.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, page, 1)

		require.NoError(t, comments.Delete(ctx, comment.ID))
		assert.ErrorIs(t, comments.Delete(ctx, comment.ID), engagement.ErrCommentNotFound)

		require.NoError(t, favorites.Add(ctx, user.ID, first.ID))
		require.NoError(t, favorites.Add(ctx, user.ID, first.ID))
		ok, err := favorites.Exists(ctx, user.ID, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		favs, err := favorites.List(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "Spider-Man", favs[0].TitleName)

		require.NoError(t, favorites.Remove(ctx, user.ID, first.ID))
		assert.ErrorIs(t, favorites.Remove(ctx, user.ID, first.ID), engagement.ErrFavoriteNotFound)
	})

	t.Run("publisher stats", func(t *testing.T) {
		stats, err := publishers.Stats(ctx, publisher.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TitleCount)
		assert.Equal(t, 2, stats.IssueCount)
		require.NotNil(t, stats.FirstYear)
		assert.Equal(t, 1963, *stats.FirstYear)
		assert.Equal(t, 1964, *stats.LatestYear)
	})
}
