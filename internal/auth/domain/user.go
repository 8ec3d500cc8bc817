package domain

import (
	"time"

	"viewtube/pkg/encrypt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchEntry 使用者個人的搜尋紀錄（去重後最多保留 20 筆）
type SearchEntry struct {
	Term       string    `bson:"term" json:"term"`
	SearchedAt time.Time `bson:"searched_at" json:"searchedAt"`
}

// User 用來表示使用者
type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username           string               `bson:"username" json:"username"`
	Email              string               `bson:"email" json:"email"`
	Password           string               `bson:"password" json:"-"`
	Avatar             string               `bson:"avatar" json:"avatar"`
	CoverImage         string               `bson:"cover_image" json:"coverImage"`
	SubscribedChannels []primitive.ObjectID `bson:"subscribed_channels" json:"subscribedChannels"`
	SubscribedCount    int64                `bson:"subscribed_count" json:"subscribedCount"`
	LikedVideos        []primitive.ObjectID `bson:"liked_videos" json:"likedVideos"`
	SearchHistory      []SearchEntry        `bson:"search_history" json:"-"`
	CreatedAt          time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Profile 給其他模組 join 用的公開投影 (username, avatar)
type Profile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// IsPasswordMatch 密碼驗證
func (u *User) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(u.Password, inputPwd)
}

// UserQuery join conditions are used to query users
type UserQuery struct {
	ID       *primitive.ObjectID
	Email    *string
	Username *string
}

// RegisterReq register request payload
type RegisterReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginReq login request payload
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult usecase register/login response
// RefreshToken 由 handler 放進 http-only cookie，不進 response body
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}
