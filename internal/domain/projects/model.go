package projects

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ProjectID   string    `json:"project_id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewID — короткий идентификатор: первые 8 символов UUID.
func NewID() string {
	return uuid.NewString()[:8]
}

// Slug собирает "имя-в-нижнем-регистре-id".
func Slug(name, id string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	if s == "" {
		return id
	}
	return s + "-" + id
}
