package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const CoursesIndex = "courses"

// CourseIndex keeps the Meilisearch "courses" index in sync with published courses.
type CourseIndex interface {
	IndexCourse(ctx context.Context, course *entity.Course) error
	IndexCourses(ctx context.Context, courses []entity.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	SearchCourseIDs(ctx context.Context, query string, limit int64) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, logger *slog.Logger) CourseIndex {
	if logger == nil {
		logger = slog.Default()
	}
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	filterable := []any{"isPublished", "category", "level"}
	if _, err := s.client.Index(CoursesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.logger.Warn("failed to update courses filterable attributes", "error", err)
		return
	}
	s.logger.Info("meilisearch courses index initialized")
}

type courseDoc struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	CreatorName string  `json:"creatorName"`
	CreatedAt   int64   `json:"createdAt"`
	IsPublished bool    `json:"isPublished"`
}

func (s *meiliSearchService) toDoc(course *entity.Course) courseDoc {
	doc := courseDoc{
		ID:          course.ID.String(),
		Title:       s.cleanText(course.Title),
		Description: s.cleanText(course.Description),
		Category:    course.Category,
		Level:       course.Level,
		Price:       course.Price,
		CreatedAt:   course.CreatedAt.Unix(),
		IsPublished: course.IsPublished,
	}
	if course.Creator != nil && course.Creator.User != nil {
		doc.CreatorName = course.Creator.User.Name
	}
	return doc
}

func (s *meiliSearchService) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	clean := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexCourse(ctx context.Context, course *entity.Course) error {
	if !course.IsPublished {
		return s.DeleteCourse(ctx, course.ID)
	}

	task, err := s.client.Index(CoursesIndex).AddDocuments([]courseDoc{s.toDoc(course)}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index course %s: %w", course.ID, err)
	}
	s.logger.DebugContext(ctx, "indexed course", "course_id", course.ID, "task_uid", task.TaskUID)
	return nil
}

// IndexCourses replaces the whole index with the given courses. Unpublished ones are skipped.
func (s *meiliSearchService) IndexCourses(ctx context.Context, courses []entity.Course) error {
	docs := make([]courseDoc, 0, len(courses))
	for i := range courses {
		if courses[i].IsPublished {
			docs = append(docs, s.toDoc(&courses[i]))
		}
	}

	index := s.client.Index(CoursesIndex)
	if _, err := index.DeleteAllDocuments(); err != nil {
		return fmt.Errorf("clear courses index: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	task, err := index.AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("reindex courses: %w", err)
	}
	s.logger.InfoContext(ctx, "reindexed courses", "count", len(docs), "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.client.Index(CoursesIndex).DeleteDocument(id.String()); err != nil {
		return fmt.Errorf("delete course %s from index: %w", id, err)
	}
	return nil
}

type searchHits struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
}

// SearchCourseIDs returns matching published course ids in ranking order.
func (s *meiliSearchService) SearchCourseIDs(ctx context.Context, query string, limit int64) ([]uuid.UUID, error) {
	raw, err := s.client.Index(CoursesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		Filter:               "isPublished = true",
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}

	var result searchHits
	if raw != nil {
		if err := json.Unmarshal(*raw, &result); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping search hit with invalid id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
