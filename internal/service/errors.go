package service

import "errors"

// 业务语义错误；处理器用 errors.Is 映射到响应码
var (
	ErrNotFound           = errors.New("record not found")
	ErrUsernameEmailInUse = errors.New("username or email already exists")
	ErrTitleInUse         = errors.New("title already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
