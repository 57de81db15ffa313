package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

// FollowService manages follow edges between authors.
type FollowService struct {
	followRepo repository.FollowRepository
}

func NewFollowService(followRepo repository.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

// Follow creates the edge unless it already exists. Following yourself is INVALID_RELATIONSHIP.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewInvalidRelationshipError("You cannot follow yourself")
	}
	created, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if created {
		observability.ContentCreated.WithLabelValues("follow").Inc()
	}
	return nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	_, err := s.followRepo.Delete(ctx, followerID, followeeID)
	return err
}

// IsFollowing reports whether followerID follows followeeID. Anonymous viewers follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	if followerID == 0 || followerID == followeeID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

// FollowCounts is the number of followers and followed authors of a user.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Counts returns the follow counts of userID.
func (s *FollowService) Counts(ctx context.Context, userID uint) (FollowCounts, error) {
	var counts FollowCounts
	var err error
	if counts.Followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return FollowCounts{}, err
	}
	if counts.Following, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return FollowCounts{}, err
	}
	return counts, nil
}
