package issue

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/catalog"
	"revista/backend/internal/pagination"
)

type fakeTitles struct {
	domain.TitleRepository
	ids map[int64]bool
}

func (f fakeTitles) GetByID(_ context.Context, id int64) (*domain.Title, error) {
	if !f.ids[id] {
		return nil, domain.ErrTitleNotFound
	}
	return &domain.Title{ID: id}, nil
}

type fakeIssues struct {
	items      map[int64]*domain.Issue
	nextID     int64
	writes     int
	lastFilter domain.IssueFilter
	lastLimit  int
}

func newFakeIssues() *fakeIssues { return &fakeIssues{items: map[int64]*domain.Issue{}} }

func (f *fakeIssues) Create(_ context.Context, i *domain.Issue) error {
	f.nextID++
	i.ID = f.nextID
	cp := *i
	f.items[i.ID] = &cp
	f.writes++
	return nil
}

func (f *fakeIssues) GetByID(_ context.Context, id int64) (*domain.Issue, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIssues) GetByNumber(_ context.Context, titleID int64, n domain.IssueNumber) (*domain.Issue, error) {
	for _, i := range f.items {
		if i.TitleID == titleID && i.IssueNumber == n {
			cp := *i
			return &cp, nil
		}
	}
	return nil, domain.ErrIssueNotFound
}

func (f *fakeIssues) List(_ context.Context, filter domain.IssueFilter) ([]*domain.Issue, int, error) {
	f.lastFilter = filter
	return []*domain.Issue{{ID: 1}}, 45, nil
}

func (f *fakeIssues) Search(_ context.Context, _ string, limit int) ([]*domain.Issue, error) {
	f.lastLimit = limit
	return nil, nil
}

func (f *fakeIssues) Similar(_ context.Context, issue *domain.Issue, _ int) ([]*domain.Issue, error) {
	var out []*domain.Issue
	for _, i := range f.items {
		if i.ID != issue.ID && i.TitleID == issue.TitleID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeIssues) Update(_ context.Context, i *domain.Issue) error {
	cp := *i
	f.items[i.ID] = &cp
	f.writes++
	return nil
}

func (f *fakeIssues) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(f.items, id)
	return nil
}

func newTestService() (*Service, *fakeIssues) {
	issues := newFakeIssues()
	svc := NewService(issues, fakeTitles{ids: map[int64]bool{1: true, 2: true}})
	svc.nowFunc = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, issues
}

func validInput(titleID int64, number string) CreateInput {
	return CreateInput{
		TitleID:         titleID,
		IssueNumber:     domain.IssueNumber(number),
		PublicationYear: 1990,
		CoverImageURL:   "https://cdn.example.com/c.jpg",
		PDFFileURL:      "https://cdn.example.com/i.pdf",
		PageCount:       32,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateScopesDuplicatesPerTitle(t *testing.T) {
	svc, issues := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput(1, "5"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput(2, "5"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput(1, " 5 "))
	assert.ErrorIs(t, err, domain.ErrDuplicateIssue)
	assert.Equal(t, http.StatusConflict, apperr.From(err).Status())
	assert.Equal(t, 2, issues.writes)
}

func TestCreateChecksTitleBeforeUniqueness(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), validInput(3, "1"))
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, issues := newTestService()
	in := validInput(1, "")
	in.PublicationYear = 1850
	in.PDFFileURL = "ftp-ish"

	_, err := svc.Create(context.Background(), in)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	fields := map[string]bool{}
	for _, d := range appErr.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["issueNumber"])
	assert.True(t, fields["publicationYear"])
	assert.True(t, fields["pdfFileUrl"])
	assert.Zero(t, issues.writes)
}

func TestUpdate(t *testing.T) {
	svc, issues := newTestService()
	ctx := context.Background()
	first, err := svc.Create(ctx, validInput(1, "1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput(1, "2"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput(2, "1"))
	require.NoError(t, err)
	writes := issues.writes

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, UpdateInput{
			TitleID:     ptr(int64(1)),
			IssueNumber: ptr(domain.IssueNumber("2")),
		})
		assert.ErrorIs(t, err, domain.ErrIssueNotFound, "a clashing payload on a missing id is still 404")
		assert.Equal(t, writes, issues.writes)
	})

	t.Run("empty diff is a no-op", func(t *testing.T) {
		got, err := svc.Update(ctx, first.ID, UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, first.IssueNumber, got.IssueNumber)
		assert.Equal(t, writes, issues.writes)
	})

	t.Run("number clash within title", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, UpdateInput{IssueNumber: ptr(domain.IssueNumber("2"))})
		assert.ErrorIs(t, err, domain.ErrDuplicateIssue)
	})

	t.Run("moving to a title that already has the number", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, UpdateInput{TitleID: ptr(int64(2))})
		assert.ErrorIs(t, err, domain.ErrDuplicateIssue)
	})

	t.Run("moving to a missing title", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, UpdateInput{TitleID: ptr(int64(8))})
		assert.ErrorIs(t, err, domain.ErrTitleNotFound)
	})

	t.Run("keeping its own number excludes itself", func(t *testing.T) {
		got, err := svc.Update(ctx, first.ID, UpdateInput{IssueNumber: ptr(domain.IssueNumber("1")), PageCount: ptr(48)})
		require.NoError(t, err)
		assert.Equal(t, 48, got.PageCount)
	})
}

func TestGetIncludesSimilar(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	first, err := svc.Create(ctx, validInput(1, "1"))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.SimilarIssues)
	assert.Empty(t, detail.SimilarIssues)

	_, err = svc.Create(ctx, validInput(1, "2"))
	require.NoError(t, err)
	detail, err = svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, detail.SimilarIssues, 1)

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestSearch(t *testing.T) {
	svc, issues := newTestService()

	_, err := svc.Search(context.Background(), "   ", "")
	assert.ErrorIs(t, err, domain.ErrSearchTermRequired)

	items, err := svc.Search(context.Background(), "batman", "500")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, pagination.MaxLimit, issues.lastLimit)
}

func TestListBuildsEnvelope(t *testing.T) {
	svc, issues := newTestService()

	env, err := svc.List(context.Background(), Filter{TitleID: 2, PublicationYear: 2001}, pagination.Normalize("3", "10"))
	require.NoError(t, err)
	assert.Equal(t, domain.IssueFilter{TitleID: 2, PublicationYear: 2001, Limit: 10, Offset: 20}, issues.lastFilter)
	assert.Equal(t, 5, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNextPage)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	first, err := svc.Create(ctx, validInput(1, "1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), domain.ErrIssueNotFound)
}
