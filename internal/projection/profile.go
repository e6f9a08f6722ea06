// Package projection turns stored student profiles into the public view,
// attaching follower counts and the viewer's follow state.
package projection

import (
	"context"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/pkg/dto"
)

// FollowerStats answers supporter-graph questions for a batch of profiles.
type FollowerStats interface {
	CountByProfiles(ctx context.Context, profileIDs []uint) (map[uint]int64, error)
	FollowedAmong(ctx context.Context, userID uint, profileIDs []uint) (map[uint]bool, error)
}

type Projector struct {
	followers FollowerStats
}

func NewProjector(followers FollowerStats) *Projector {
	return &Projector{followers: followers}
}

func (p *Projector) Profile(ctx context.Context, profile *entity.StudentProfile, viewer *entity.User) (*dto.StudentProfileResponse, error) {
	out, err := p.Profiles(ctx, []entity.StudentProfile{*profile}, viewer)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Profiles projects a batch with two queries in total, whatever its size.
// is_following is only ever true for a donor viewer.
func (p *Projector) Profiles(ctx context.Context, profiles []entity.StudentProfile, viewer *entity.User) ([]dto.StudentProfileResponse, error) {
	out := make([]dto.StudentProfileResponse, 0, len(profiles))
	if len(profiles) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(profiles))
	for i := range profiles {
		ids = append(ids, profiles[i].ID)
	}

	counts, err := p.followers.CountByProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	var following map[uint]bool
	if viewer != nil && viewer.Role == entity.RoleDonor {
		following, err = p.followers.FollowedAmong(ctx, viewer.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	for i := range profiles {
		res := dto.NewStudentProfileResponse(&profiles[i])
		res.FollowersCount = counts[profiles[i].ID]
		res.IsFollowing = following[profiles[i].ID]
		out = append(out, res)
	}
	return out, nil
}
