package v1

import "time"

type LoginUser struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterUser struct {
	Username string `json:"username" binding:"required"`
	NickName string `json:"nickName" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required"`
}

type UpdatePassword struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateUser is the profile form. Empty fields are left unchanged.
type UpdateUser struct {
	HeadPic  string `json:"headPic"`
	NickName string `json:"nickName"`
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required"`
}

type UserInfo struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	NickName    string    `json:"nickName"`
	Email       string    `json:"email"`
	HeadPic     string    `json:"headPic"`
	PhoneNumber string    `json:"phoneNumber"`
	IsFrozen    bool      `json:"isFrozen"`
	IsAdmin     bool      `json:"isAdmin"`
	CreateTime  time.Time `json:"createTime"`
}

type LoginUserVo struct {
	UserInfo     UserInfo `json:"userInfo"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// RefreshToken is the payload of /user/refresh. Field names are snake_case on the wire.
type RefreshToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
