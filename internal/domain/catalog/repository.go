package catalog

import "context"

// PublisherRepository defines persistence behaviours for publishers.
type PublisherRepository interface {
	Create(ctx context.Context, publisher *Publisher) error
	GetByID(ctx context.Context, id int64) (*Publisher, error)
	GetByName(ctx context.Context, name string) (*Publisher, error)
	List(ctx context.Context) ([]*Publisher, error)
	Update(ctx context.Context, publisher *Publisher) error
	Delete(ctx context.Context, id int64) error
	CountTitles(ctx context.Context, id int64) (int, error)
	Stats(ctx context.Context, id int64) (*PublisherStats, error)
}

// TitleRepository defines persistence behaviours for titles.
type TitleRepository interface {
	Create(ctx context.Context, title *Title) error
	GetByID(ctx context.Context, id int64) (*Title, error)
	GetByName(ctx context.Context, publisherID int64, name string) (*Title, error)
	List(ctx context.Context, publisherID int64) ([]*Title, error)
	Update(ctx context.Context, title *Title) error
	Delete(ctx context.Context, id int64) error
	CountIssues(ctx context.Context, id int64) (int, error)
}

// IssueRepository defines persistence behaviours for issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id int64) (*Issue, error)
	GetByNumber(ctx context.Context, titleID int64, number IssueNumber) (*Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]*Issue, int, error)
	Search(ctx context.Context, term string, limit int) ([]*Issue, error)
	Similar(ctx context.Context, issue *Issue, limit int) ([]*Issue, error)
	Update(ctx context.Context, issue *Issue) error
	Delete(ctx context.Context, id int64) error
}
