package models

// Collection names used by the record store.
const (
	CollectionUsers           = "users"
	CollectionPeriods         = "periods"
	CollectionPositions       = "positions"
	CollectionMembers         = "members"
	CollectionPosts           = "posts"
	CollectionGalleries       = "galleries"
	CollectionDocuments       = "documents"
	CollectionPages           = "pages"
	CollectionActivityLogs    = "activity-logs"
	CollectionContactMessages = "contact-messages"
)

// Global slugs.
const (
	GlobalSettings   = "settings"
	GlobalAbout      = "about"
	GlobalNavigation = "navigation"
)
