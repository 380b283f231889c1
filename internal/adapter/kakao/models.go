package kakao

import (
	"fmt"

	"github.com/GoArmGo/Weplash/internal/domain"
)

// userInfoResponse — поля ответа /v2/user/me, которые нам нужны
type userInfoResponse struct {
	ID           *int64 `json:"id"`
	KakaoAccount struct {
		Email           string `json:"email"`
		IsEmailValid    bool   `json:"is_email_valid"`
		IsEmailVerified bool   `json:"is_email_verified"`
		Profile         struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (r userInfoResponse) toDomain() (*domain.KakaoProfile, error) {
	if r.ID == nil {
		return nil, fmt.Errorf("%w: id", domain.ErrMalformedResponse)
	}
	return &domain.KakaoProfile{
		ID:            *r.ID,
		Email:         r.KakaoAccount.Email,
		EmailVerified: r.KakaoAccount.IsEmailValid && r.KakaoAccount.IsEmailVerified,
		Nickname:      r.KakaoAccount.Profile.Nickname,
		ProfileImage:  r.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
