package application

import (
	"context"
	"errors"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

// MultiSink fans an activity out to every sink and joins their errors.
type MultiSink []ActivitySink

func (m MultiSink) Insert(ctx context.Context, a entity.Activity) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Insert(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecentActivity lists the newest activity of a user. Without a configured
// reader the list is empty.
func (s *Service) RecentActivity(ctx context.Context, userID string, size int) ([]entity.Activity, error) {
	if s.history == nil {
		return []entity.Activity{}, nil
	}
	out, err := s.history.Recent(ctx, userID, size)
	if err != nil {
		return nil, s.internal(ctx, "recent_activity", err)
	}
	return out, nil
}
