package models

import "time"

// Category tags a project for filtering
type Category string

const (
	CategoryAll       Category = "All"
	CategoryFrontend  Category = "Frontend"
	CategoryBackend   Category = "Backend"
	CategoryFullstack Category = "Fullstack"
)

// Categories lists every accepted category in display order
var Categories = []Category{CategoryAll, CategoryFrontend, CategoryBackend, CategoryFullstack}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Project represents a portfolio project
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Thumbnail   string    `json:"thumbnail"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectInput holds the fields an admin can set on a project
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Thumbnail   string   `json:"thumbnail"`
	Category    Category `json:"category"`
}

// ProjectQuery describes a filtered, paginated project listing
type ProjectQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProjectPage is one page of a project listing
type ProjectPage struct {
	Projects    []Project `json:"projects"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Total       int       `json:"total"`
}

// ProjectList wraps the array of projects
type ProjectList struct {
	Projects []Project `json:"projects"`
}
