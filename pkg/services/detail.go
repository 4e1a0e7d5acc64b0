package services

import (
	"context"

	"folio/pkg/models"

	"go.uber.org/zap"
)

// DetailMarkdown fetches the optional markdown body of an item. Failures are logged
// and reported as absent; the detail page renders without the body.
func (s *ContentStore) DetailMarkdown(ctx context.Context, ct models.ContentTypeConfig, item *models.ContentItem) (string, bool) {
	if ct.DetailMarkdown.IsZero() {
		return "", false
	}
	source := ct.DetailMarkdown.Apply(item)
	if source == "" {
		return "", false
	}
	data, err := s.loader.Fetcher.Fetch(ctx, source)
	if err != nil {
		zap.L().Warn("detail markdown unavailable",
			zap.String("type", ct.Name),
			zap.String("id", item.ID),
			zap.String("source", source),
			zap.Error(err))
		return "", false
	}
	_, body, _ := ParseFrontMatter(data)
	return body, body != ""
}
