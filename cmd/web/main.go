// @title           Blog API
// @version         1.0
// @description     REST API блога: пользователи, посты с картинками, комментарии и категории.
// @host            localhost:8000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import "blog_backend/internal/app"

func main() {
	app.Run()
}
