package crm

import (
	"context"

	"crm-gateway/internal/models"

	"gorm.io/gorm"
)

// AudienceResolver turns a campaign's audience definition into a concrete
// list of lead ids. Resolution happens at send time so criteria-based
// audiences reflect the lead population as it is then, not as it was when
// the campaign was created.
type AudienceResolver struct {
	db *gorm.DB
}

func NewAudienceResolver(db *gorm.DB) *AudienceResolver {
	return &AudienceResolver{db: db}
}

// Resolve returns the deduplicated lead ids eligible for the campaign.
// A non-empty explicit target list wins over criteria; its ids are
// returned as-is without an existence check (unknown ids are skipped at
// dispatch time). With neither a list nor criteria the audience is empty.
func (r *AudienceResolver) Resolve(ctx context.Context, campaign *models.Campaign) ([]string, error) {
	if explicit := unmarshalList(campaign.TargetLeads); len(explicit) > 0 {
		return dedupe(explicit), nil
	}

	statuses := unmarshalList(campaign.CriteriaStatus)
	sources := unmarshalList(campaign.CriteriaSource)
	if len(statuses) == 0 && len(sources) == 0 {
		return []string{}, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Lead{}).Order("created_at ASC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if len(sources) > 0 {
		query = query.Where("source IN ?", sources)
	}

	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
