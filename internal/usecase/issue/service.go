package issue

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "revista/backend/internal/domain/catalog"
	"revista/backend/internal/pagination"
	"revista/backend/internal/validation"
)

const similarLimit = 4

// Service encapsulates issue use cases.
type Service struct {
	issues  domain.IssueRepository
	titles  domain.TitleRepository
	nowFunc func() time.Time
}

// NewService constructs an issue service.
func NewService(issues domain.IssueRepository, titles domain.TitleRepository) *Service {
	return &Service{
		issues:  issues,
		titles:  titles,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for issue creation.
type CreateInput struct {
	TitleID         int64              `json:"titleId" validate:"required,gte=1"`
	IssueNumber     domain.IssueNumber `json:"issueNumber" validate:"required,max=50"`
	PublicationYear int                `json:"publicationYear" validate:"required,gte=1900,lte=2100"`
	Description     string             `json:"description" validate:"max=5000"`
	CoverImageURL   string             `json:"coverImageUrl" validate:"required,url,max=500"`
	PDFFileURL      string             `json:"pdfFileUrl" validate:"required,url,max=500"`
	PageCount       int                `json:"pageCount" validate:"required,gte=1,lte=10000"`
	Author          string             `json:"author" validate:"max=255"`
	Artist          string             `json:"artist" validate:"max=255"`
}

// UpdateInput encapsulates partial issue updates.
type UpdateInput struct {
	TitleID         *int64              `json:"titleId" validate:"omitempty,gte=1"`
	IssueNumber     *domain.IssueNumber `json:"issueNumber" validate:"omitempty,min=1,max=50"`
	PublicationYear *int                `json:"publicationYear" validate:"omitempty,gte=1900,lte=2100"`
	Description     *string             `json:"description" validate:"omitempty,max=5000"`
	CoverImageURL   *string             `json:"coverImageUrl" validate:"omitempty,url,max=500"`
	PDFFileURL      *string             `json:"pdfFileUrl" validate:"omitempty,url,max=500"`
	PageCount       *int                `json:"pageCount" validate:"omitempty,gte=1,lte=10000"`
	Author          *string             `json:"author" validate:"omitempty,max=255"`
	Artist          *string             `json:"artist" validate:"omitempty,max=255"`
}

func (in UpdateInput) empty() bool {
	return in.TitleID == nil && in.IssueNumber == nil && in.PublicationYear == nil &&
		in.Description == nil && in.CoverImageURL == nil && in.PDFFileURL == nil &&
		in.PageCount == nil && in.Author == nil && in.Artist == nil
}

// Filter narrows listings. Zero values mean "any".
type Filter struct {
	TitleID         int64
	PublicationYear int
}

// Detail is an issue together with a few related ones.
type Detail struct {
	Issue         *domain.Issue   `json:"issue"`
	SimilarIssues []*domain.Issue `json:"similarIssues"`
}

// List returns one page of issues.
func (s *Service) List(ctx context.Context, filter Filter, page pagination.Params) (pagination.Envelope[*domain.Issue], error) {
	items, total, err := s.issues.List(ctx, domain.IssueFilter{
		TitleID:         filter.TitleID,
		PublicationYear: filter.PublicationYear,
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return pagination.Envelope[*domain.Issue]{}, err
	}
	return pagination.BuildEnvelope(items, page.Page, page.Limit, total), nil
}

// Get fetches an issue with its similar issues.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	item, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	similar, err := s.issues.Similar(ctx, item, similarLimit)
	if err != nil {
		return nil, err
	}
	if similar == nil {
		similar = []*domain.Issue{}
	}
	return &Detail{Issue: item, SimilarIssues: similar}, nil
}

// Search matches issues by title, publisher, author, artist or description.
func (s *Service) Search(ctx context.Context, term, limit string) ([]*domain.Issue, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ErrSearchTermRequired
	}
	items, err := s.issues.Search(ctx, term, pagination.NormalizeSearchLimit(limit))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Issue{}
	}
	return items, nil
}

// Create stores a new issue under an existing title.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Issue, error) {
	input.IssueNumber = domain.IssueNumber(strings.TrimSpace(string(input.IssueNumber)))
	input.CoverImageURL = strings.TrimSpace(input.CoverImageURL)
	input.PDFFileURL = strings.TrimSpace(input.PDFFileURL)
	if err := validation.Validate(input); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(ctx, input.TitleID); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, input.TitleID, input.IssueNumber, 0); err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	item := &domain.Issue{
		TitleID:         input.TitleID,
		IssueNumber:     input.IssueNumber,
		PublicationYear: input.PublicationYear,
		Description:     input.Description,
		CoverImageURL:   input.CoverImageURL,
		PDFFileURL:      input.PDFFileURL,
		PageCount:       input.PageCount,
		Author:          strings.TrimSpace(input.Author),
		Artist:          strings.TrimSpace(input.Artist),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.issues.Create(ctx, item); err != nil {
		return nil, err
	}
	return s.issues.GetByID(ctx, item.ID)
}

// Update applies partial updates. Changing the title or the issue number
// re-checks uniqueness within the resulting title, excluding this issue.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Issue, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	if input.IssueNumber != nil {
		number := domain.IssueNumber(strings.TrimSpace(string(*input.IssueNumber)))
		input.IssueNumber = &number
	}
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	item, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.empty() {
		return item, nil
	}

	titleID, number := item.TitleID, item.IssueNumber
	if input.TitleID != nil {
		titleID = *input.TitleID
	}
	if input.IssueNumber != nil {
		number = *input.IssueNumber
	}
	if titleID != item.TitleID {
		if err := s.ensureTitle(ctx, titleID); err != nil {
			return nil, err
		}
	}
	if titleID != item.TitleID || number != item.IssueNumber {
		if err := s.ensureNumberFree(ctx, titleID, number, id); err != nil {
			return nil, err
		}
	}

	item.TitleID = titleID
	item.IssueNumber = number
	if input.PublicationYear != nil {
		item.PublicationYear = *input.PublicationYear
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.CoverImageURL != nil {
		item.CoverImageURL = strings.TrimSpace(*input.CoverImageURL)
	}
	if input.PDFFileURL != nil {
		item.PDFFileURL = strings.TrimSpace(*input.PDFFileURL)
	}
	if input.PageCount != nil {
		item.PageCount = *input.PageCount
	}
	if input.Author != nil {
		item.Author = strings.TrimSpace(*input.Author)
	}
	if input.Artist != nil {
		item.Artist = strings.TrimSpace(*input.Artist)
	}
	item.UpdatedAt = s.nowFunc().UTC()

	if err := s.issues.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.issues.GetByID(ctx, id)
}

// Delete removes an issue.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	return s.issues.Delete(ctx, id)
}

func (s *Service) ensureTitle(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	_, err := s.titles.GetByID(ctx, id)
	return err
}

func (s *Service) ensureNumberFree(ctx context.Context, titleID int64, number domain.IssueNumber, excludeID int64) error {
	existing, err := s.issues.GetByNumber(ctx, titleID, number)
	switch {
	case errors.Is(err, domain.ErrIssueNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != excludeID:
		return domain.ErrDuplicateIssue
	}
	return nil
}
