package validation

import "strings"

// MaxPostTextLength bounds the text of posts and comments.
const MaxPostTextLength = 10000

// PostForm is the submitted create/edit post form. Group and image are checked by the service.
type PostForm struct {
	Text  string `json:"text" form:"text" validate:"notblank,maxrunes=10000"`
	Group string `json:"group" form:"group"`
}

// CommentForm is the submitted comment form.
type CommentForm struct {
	Text string `json:"text" form:"text" validate:"notblank,maxrunes=10000"`
}

// SignupForm is the registration form.
type SignupForm struct {
	Username string `json:"username" form:"username" validate:"required,username"`
	Email    string `json:"email" form:"email" validate:"omitempty,emailaddr"`
	Password string `json:"password" form:"password" validate:"required,password"`
}

// LoginForm is the login form.
type LoginForm struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Normalize trims surrounding whitespace from the post text.
func (f *PostForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
}

// Normalize trims surrounding whitespace from the comment text.
func (f *CommentForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
}

// Normalize trims the identifying fields; the password is kept verbatim.
func (f *SignupForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// Normalize trims the username.
func (f *LoginForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
}
