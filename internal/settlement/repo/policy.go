package repo

import (
	"context"

	"gopherpay.com/internal/settlement/domain"
)

func (r *Repo) LoadPolicies(ctx context.Context) (map[string]string, error) {
	var rows []domain.PolicyRow
	if err := r.getDb(ctx).Find(&rows).Error; err != nil {
		return nil, storageErr(err, "load policies failed")
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
