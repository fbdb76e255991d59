package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для ошибок предметной области блога.
*/

// =========================================================================
// Фабричные ФУНКЦИИ
// =========================================================================

// NotFound - ошибка "не найдено" (404) для конкретного домена
func NotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ExternalServiceError - сбой внешнего сервиса (почта, хранилище картинок)
func ExternalServiceError(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// --- Auth ---

// ErrUnauthenticated - нет заголовка Authorization или токен невалиден
var ErrUnauthenticated = New(
	CodeUnauthenticated,
	"auth",
	"No token provided, access denied",
	http.StatusUnauthorized, // 401
)

// ErrInvalidAccessToken - подпись, формат или срок действия токена не прошли проверку
var ErrInvalidAccessToken = New(
	CodeUnauthenticated,
	"auth",
	"Invalid token, access denied",
	http.StatusUnauthorized, // 401
)

// ErrForbidden - пользователь аутентифицирован, но политика доступа не пройдена
var ErrForbidden = New(
	CodeForbidden,
	"auth",
	"Not allowed",
	http.StatusForbidden, // 403
)

// ErrAdminOnly - доступ только для администратора
var ErrAdminOnly = New(
	CodeForbidden,
	"auth",
	"Not allowed, only admin",
	http.StatusForbidden, // 403
)

// ErrOwnerOnly - доступ только для владельца ресурса
var ErrOwnerOnly = New(
	CodeForbidden,
	"auth",
	"Not allowed, only the owner",
	http.StatusForbidden, // 403
)

// ErrOwnerOrAdmin - доступ для владельца или администратора
var ErrOwnerOrAdmin = New(
	CodeForbidden,
	"auth",
	"Not allowed, only the owner or admin",
	http.StatusForbidden, // 403
)

// ErrInvalidCredentials - неверный email или пароль.
// Одно и то же сообщение для неизвестного email и неверного пароля.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusBadRequest, // 400
)

// ErrWrongCurrentPassword - текущий пароль не совпал при смене пароля
var ErrWrongCurrentPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest, // 400
)

// ErrInvalidOrExpiredToken - код сброса пароля не найден или истек
var ErrInvalidOrExpiredToken = New(
	CodeInvalidOrExpiredToken,
	"auth",
	"Invalid or expired token",
	http.StatusBadRequest, // 400
)

// ErrDeliveryFailure - письмо со ссылкой сброса не удалось отправить
var ErrDeliveryFailure = New(
	CodeDeliveryFailure,
	"email",
	"Failed to send password reset email, try again later",
	http.StatusBadGateway, // 502
)

// --- Users ---

// ErrEmailAlreadyExists - email уже используется
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"user",
	"User already exists",
	http.StatusConflict, // 409
)

// ErrUserNotFound - пользователь не найден
var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound, // 404
)

// --- Posts / Comments / Categories ---

// ErrPostNotFound - пост не найден
var ErrPostNotFound = New(
	CodeNotFound,
	"post",
	"Post not found",
	http.StatusNotFound, // 404
)

// ErrCommentNotFound - комментарий не найден
var ErrCommentNotFound = New(
	CodeNotFound,
	"comment",
	"Comment not found",
	http.StatusNotFound, // 404
)

// ErrCategoryNotFound - категория не найдена
var ErrCategoryNotFound = New(
	CodeNotFound,
	"category",
	"Category not found",
	http.StatusNotFound, // 404
)

// ErrRouteNotFound - маршрут не существует
var ErrRouteNotFound = New(
	CodeNotFound,
	"http",
	"Route not found",
	http.StatusNotFound, // 404
)

// ErrInvalidID - идентификатор в пути не является UUID
var ErrInvalidID = New(
	CodeValidationFailed,
	"request",
	"Invalid id",
	http.StatusBadRequest, // 400
)

// --- Uploads ---

// ErrImageRequired - в запросе нет файла "image"
var ErrImageRequired = New(
	CodeValidationFailed,
	"upload",
	"No image provided",
	http.StatusBadRequest, // 400
)

// ErrFileTooLarge - файл превышает максимальный размер
var ErrFileTooLarge = New(
	CodePayloadTooLarge,
	"upload",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge, // 413
)

// ErrUnsupportedImage - содержимое файла не является поддерживаемым изображением
var ErrUnsupportedImage = New(
	CodeUnsupportedMediaType,
	"upload",
	"Unsupported file format, only images are allowed",
	http.StatusUnsupportedMediaType, // 415
)
