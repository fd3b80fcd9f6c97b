package models

import "time"

// ContentStatus is the publication state of posts and pages.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// PostCategory groups posts on the public site.
type PostCategory string

const (
	PostCategoryNews         PostCategory = "news"
	PostCategoryActivity     PostCategory = "activity"
	PostCategoryAnnouncement PostCategory = "announcement"
	PostCategoryAchievement  PostCategory = "achievement"
)

// Tag is a free-form label attached to posts and documents.
type Tag struct {
	Tag string `json:"tag"`
}

// Post is a published article. Views only grows.
type Post struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Category      PostCategory  `json:"category"`
	Author        Relation      `json:"author,omitempty"`
	PublishedDate *time.Time    `json:"publishedDate,omitempty"`
	FeaturedImage string        `json:"featuredImage,omitempty"`
	Excerpt       string        `json:"excerpt,omitempty"`
	Content       string        `json:"content,omitempty"`
	Gallery       Relation      `json:"gallery,omitempty"`
	Tags          []Tag         `json:"tags,omitempty"`
	Status        ContentStatus `json:"status"`
	Views         int64         `json:"views"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
}

// GalleryType distinguishes photo and video albums.
type GalleryType string

const (
	GalleryPhoto GalleryType = "photo"
	GalleryVideo GalleryType = "video"
)

// GalleryItem is one entry of an album.
type GalleryItem struct {
	Image    string `json:"image,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type Gallery struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Type        GalleryType   `json:"type"`
	Description string        `json:"description,omitempty"`
	EventDate   *time.Time    `json:"eventDate,omitempty"`
	CoverImage  string        `json:"coverImage,omitempty"`
	Items       []GalleryItem `json:"items,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

// DocumentCategory classifies organizational files.
type DocumentCategory string

const (
	DocumentDecree   DocumentCategory = "sk"
	DocumentCircular DocumentCategory = "se"
	DocumentReport   DocumentCategory = "report"
	DocumentProposal DocumentCategory = "proposal"
	DocumentStatutes DocumentCategory = "ad_art"
	DocumentOther    DocumentCategory = "other"
)

// OrgDocument is an uploaded file record. Private documents are only listed for signed-in users.
type OrgDocument struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Category     DocumentCategory `json:"category"`
	File         string           `json:"file,omitempty"`
	Description  string           `json:"description,omitempty"`
	UploadDate   *time.Time       `json:"uploadDate,omitempty"`
	DocumentDate *time.Time       `json:"documentDate,omitempty"`
	IsPublic     bool             `json:"isPublic"`
	Tags         []Tag            `json:"tags,omitempty"`
	CreatedAt    *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time       `json:"updatedAt,omitempty"`
}

type Page struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content,omitempty"`
	FeaturedImage string        `json:"featuredImage,omitempty"`
	Status        ContentStatus `json:"status"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
}

// Stats aggregates public counters for the landing page.
type Stats struct {
	TotalMembers   int `json:"totalMembers"`
	TotalPosts     int `json:"totalPosts"`
	TotalGalleries int `json:"totalGalleries"`
	TotalDocuments int `json:"totalDocuments"`
}
