package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	PostService     PostService
	CommentService  CommentService
	CategoryService CategoryService
	ImageService    ImageService
}
