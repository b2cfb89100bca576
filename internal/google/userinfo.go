package google

import (
	"context"
	"fmt"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo is the subset of the Google profile used to personalize replies.
type UserInfo struct {
	Name      string
	GivenName string
	Email     string
}

// GetUserInfo fetches the authorized user's profile.
func GetUserInfo(ctx context.Context, opts ...option.ClientOption) (*UserInfo, error) {
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &UserInfo{Name: info.Name, GivenName: info.GivenName, Email: info.Email}, nil
}

// DisplayName picks the friendliest available name, falling back to "User".
func (u *UserInfo) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.GivenName != "":
		return u.GivenName
	case u.Name != "":
		return u.Name
	default:
		return "User"
	}
}
