package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"revista/backend/internal/apperr"
)

var (
	ErrPublisherNotFound = apperr.New(apperr.KindNotFound, "PUBLISHER_NOT_FOUND", "Publisher not found")
	ErrTitleNotFound     = apperr.New(apperr.KindNotFound, "TITLE_NOT_FOUND", "Title not found")
	ErrIssueNotFound     = apperr.New(apperr.KindNotFound, "ISSUE_NOT_FOUND", "Issue not found")

	// ErrDuplicatePublisher signals a publisher name clash.
	ErrDuplicatePublisher = apperr.New(apperr.KindConflict, "DUPLICATE_NAME", "A publisher with this name already exists")
	// ErrDuplicateTitle signals a title name clash within one publisher.
	ErrDuplicateTitle = apperr.New(apperr.KindConflict, "DUPLICATE_TITLE", "A title with this name already exists for this publisher")
	// ErrDuplicateIssue signals an issue number clash within one title.
	ErrDuplicateIssue = apperr.New(apperr.KindConflict, "DUPLICATE_ISSUE", "An issue with this number already exists for this title")

	ErrPublisherHasTitles = apperr.New(apperr.KindConflict, "HAS_ASSOCIATED_TITLES", "Cannot delete publisher with associated titles")
	ErrTitleHasIssues     = apperr.New(apperr.KindConflict, "HAS_ASSOCIATED_ISSUES", "Cannot delete title with associated issues")

	ErrSearchTermRequired = apperr.New(apperr.KindValidation, "SEARCH_TERM_REQUIRED", "Search term is required")
)

// Publisher is a comic publisher.
type Publisher struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	TitleCount  int       `json:"titleCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublisherStats aggregates a publisher's catalog.
type PublisherStats struct {
	PublisherID   int64   `json:"publisherId"`
	TitleCount    int     `json:"titleCount"`
	IssueCount    int     `json:"issueCount"`
	AverageRating float64 `json:"averageRating"`
	FirstYear     *int    `json:"firstYear"`
	LatestYear    *int    `json:"latestYear"`
}

// Title is a comic series owned by a publisher.
type Title struct {
	ID            int64     `json:"id"`
	PublisherID   int64     `json:"publisherId"`
	PublisherName string    `json:"publisherName,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	IssueCount    int       `json:"issueCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IssueNumber is kept as text; "1", "1A" and "Annual 2" are all valid.
// JSON input may carry it as a number or a string.
type IssueNumber string

func (n *IssueNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = IssueNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = IssueNumber(num.String())
	return nil
}

// Issue is a single published issue of a title. Read paths enrich it with
// title, publisher and rating data.
type Issue struct {
	ID              int64       `json:"id"`
	TitleID         int64       `json:"titleId"`
	IssueNumber     IssueNumber `json:"issueNumber"`
	PublicationYear int         `json:"publicationYear"`
	Description     string      `json:"description,omitempty"`
	CoverImageURL   string      `json:"coverImageUrl"`
	PDFFileURL      string      `json:"pdfFileUrl"`
	PageCount       int         `json:"pageCount"`
	Author          string      `json:"author,omitempty"`
	Artist          string      `json:"artist,omitempty"`
	TitleName       string      `json:"titleName,omitempty"`
	Genre           string      `json:"genre,omitempty"`
	PublisherID     int64       `json:"publisherId,omitempty"`
	PublisherName   string      `json:"publisherName,omitempty"`
	AverageRating   float64     `json:"averageRating"`
	RatingCount     int         `json:"ratingCount"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// IssueFilter narrows issue listings. Zero values mean "any".
type IssueFilter struct {
	TitleID         int64
	PublicationYear int
	Limit           int
	Offset          int
}
