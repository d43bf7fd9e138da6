package search

import (
	"context"
	"log"

	"anoa.com/communityhub/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const communitiesIndex = "communities"

type SearchService interface {
	IndexCommunity(ctx context.Context, community *entity.Community, tags []*entity.Tag) error
	DeleteCommunity(ctx context.Context, id uuid.UUID) error
	SearchCommunities(ctx context.Context, query, communityType string, limit int) ([]CommunityDoc, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"type", "visibility", "tags"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(communitiesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update communities filterable attributes: %v", err)
	}

	sortableAttrs := []string{"active_members_count", "created_at"}
	if _, err := s.client.Index(communitiesIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update communities sortable attributes: %v", err)
	}
}

// CommunityDoc is the flattened search document.
type CommunityDoc struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Slug               string   `json:"slug"`
	Description        string   `json:"description"`
	Type               string   `json:"type"`
	Visibility         string   `json:"visibility"`
	Tags               []string `json:"tags"`
	ActiveMembersCount int      `json:"active_members_count"`
	CreatedAt          int64    `json:"created_at"`
}

func (s *searchService) IndexCommunity(ctx context.Context, community *entity.Community, tags []*entity.Tag) error {
	// Unlisted and private communities stay out of the public index.
	if community.Visibility != entity.VisibilityPublic || community.Status != entity.CommunityStatusPublished {
		return s.DeleteCommunity(ctx, community.ID)
	}

	tagSlugs := make([]string, 0, len(tags))
	for _, tag := range tags {
		tagSlugs = append(tagSlugs, tag.Slug)
	}

	doc := CommunityDoc{
		ID:                 community.ID.String(),
		Name:               community.Name,
		Slug:               community.Slug,
		Description:        community.Description,
		Type:               community.Type,
		Visibility:         community.Visibility,
		Tags:               tagSlugs,
		ActiveMembersCount: community.ActiveMembersCount,
		CreatedAt:          community.CreatedAt.Unix(),
	}

	task, err := s.client.Index(communitiesIndex).AddDocuments([]CommunityDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed community %s, task id: %d", community.Slug, task.TaskUID)
	return nil
}

func (s *searchService) DeleteCommunity(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(communitiesIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) SearchCommunities(ctx context.Context, query, communityType string, limit int) ([]CommunityDoc, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	req := &meilisearch.SearchRequest{
		Limit: int64(limit),
		Sort:  []string{"active_members_count:desc"},
	}
	if communityType != "" {
		req.Filter = "type = " + communityType
	}

	resp, err := s.client.Index(communitiesIndex).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, err
	}

	docs := make([]CommunityDoc, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc CommunityDoc
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func strPtr(s string) *string {
	return &s
}
