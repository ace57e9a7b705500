package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"anoa.com/coursemarket/internal/entity"
	"github.com/redis/go-redis/v9"
)

const SearchReindexName = "search_reindex"

// PublishedCourses lists every published course with its creator loaded.
type PublishedCourses interface {
	ListPublished(ctx context.Context) ([]entity.Course, error)
}

type CourseIndexer interface {
	IndexCourses(ctx context.Context, courses []entity.Course) error
}

// SearchReindexAgent rebuilds the course search index from the database.
type SearchReindexAgent struct {
	courses  PublishedCourses
	index    CourseIndexer
	redis    *redis.Client
	schedule string
	lockTTL  time.Duration
	logger   *slog.Logger
}

// NewSearchReindexAgent builds the agent. With a redis client, runs across replicas are serialized by a lock.
func NewSearchReindexAgent(courses PublishedCourses, index CourseIndexer, rdb *redis.Client, schedule string, logger *slog.Logger) *SearchReindexAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchReindexAgent{
		courses:  courses,
		index:    index,
		redis:    rdb,
		schedule: schedule,
		lockTTL:  10 * time.Minute,
		logger:   logger,
	}
}

func (a *SearchReindexAgent) GetName() string     { return SearchReindexName }
func (a *SearchReindexAgent) GetSchedule() string { return a.schedule }

func (a *SearchReindexAgent) Execute(ctx context.Context) error {
	if a.redis != nil {
		lockKey := "agent_lock:" + SearchReindexName
		acquired, err := a.redis.SetNX(ctx, lockKey, time.Now().Unix(), a.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire reindex lock: %w", err)
		}
		if !acquired {
			a.logger.InfoContext(ctx, "search reindex already running elsewhere, skipping")
			return nil
		}
		defer a.redis.Del(context.WithoutCancel(ctx), lockKey)
	}

	courses, err := a.courses.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("load published courses: %w", err)
	}
	if err := a.index.IndexCourses(ctx, courses); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "search index rebuilt", "courses", len(courses))
	return nil
}
