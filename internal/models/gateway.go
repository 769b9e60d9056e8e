package models

// User 网关侧用户视图（本服务不持有，仅透传）
type User struct {
	UUID                  string `json:"uuid"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	ProfilePhotoURL       string `json:"profilePhotoUrl"`
	Description           string `json:"description"`
	CreatedAt             string `json:"createdAt"`
	AccountLockedByAdmins bool   `json:"accountLockedByAdmins"`
}

// Course 课程摘要
type Course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Enrollment 选课记录
type Enrollment struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
	Course Course `json:"course"`
}
