package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/kotbarbarossa/yamdb-final/pkg/db"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
	middleware "github.com/kotbarbarossa/yamdb-final/pkg/middleware/auth"
)

type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	Auth     *AuthHTTP
	Users    *UsersHTTP
	Catalog  *CatalogHTTP
	Titles   *TitlesHTTP
	Reviews  *ReviewsHTTP
	Comments *CommentsHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1", middleware.Authenticate(d.JWTSecret))

	auth := v1.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/token", d.Auth.Token)
	auth.POST("/token/refresh", d.Auth.Refresh)

	users := v1.Group("/users")
	users.GET("", d.Users.List)
	users.POST("", d.Users.Create)
	users.GET("/me", d.Users.Me)
	users.PATCH("/me", d.Users.PatchMe)
	users.GET("/:username", d.Users.Get)
	users.PATCH("/:username", d.Users.Patch)
	users.DELETE("/:username", d.Users.Delete)

	v1.GET("/categories", d.Catalog.ListCategories)
	v1.POST("/categories", d.Catalog.CreateCategory)
	v1.DELETE("/categories/:slug", d.Catalog.DeleteCategory)

	v1.GET("/genres", d.Catalog.ListGenres)
	v1.POST("/genres", d.Catalog.CreateGenre)
	v1.DELETE("/genres/:slug", d.Catalog.DeleteGenre)

	titles := v1.Group("/titles")
	titles.GET("", d.Titles.List)
	titles.POST("", d.Titles.Create)
	titles.GET("/:title_id", d.Titles.Get)
	titles.PATCH("/:title_id", d.Titles.Patch)
	titles.DELETE("/:title_id", d.Titles.Delete)
	titles.GET("/:title_id/rating", d.Reviews.Rating)

	reviews := titles.Group("/:title_id/reviews")
	reviews.GET("", d.Reviews.List)
	reviews.POST("", d.Reviews.Create)
	reviews.GET("/:review_id", d.Reviews.Get)
	reviews.PATCH("/:review_id", d.Reviews.Patch)
	reviews.DELETE("/:review_id", d.Reviews.Delete)

	comments := reviews.Group("/:review_id/comments")
	comments.GET("", d.Comments.List)
	comments.POST("", d.Comments.Create)
	comments.GET("/:comment_id", d.Comments.Get)
	comments.PATCH("/:comment_id", d.Comments.Patch)
	comments.DELETE("/:comment_id", d.Comments.Delete)
}
