package transport

import (
	"time"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/util"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type UserCreateRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

type UserPatchRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

type SluggedRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TitleCreateRequest struct {
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

type TitlePatchRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category"`
}

type ReviewCreateRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type ReviewPatchRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func NewReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}

type RatingResponse struct {
	TitleID uint     `json:"title_id"`
	Rating  *float64 `json:"rating"`
}

type ListResponse[T any] struct {
	Data []T       `json:"data"`
	Meta util.Meta `json:"meta"`
}

func NewList[T any](items []T, offset, limit int, total int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Meta: util.NewMeta(offset, limit, total)}
}

// MapList converts every item with fn.
func MapList[S, T any](items []S, fn func(*S) T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
