package models

import "time"

// Resource reprezentuje materiał dydaktyczny przechowywany w Cloud Storage
type Resource struct {
	ID         string    `json:"id" firestore:"id"`
	Title      string    `json:"title" firestore:"title"`
	Subject    string    `json:"subject" firestore:"subject"`
	Semester   int       `json:"semester" firestore:"semester"`
	Year       int       `json:"year" firestore:"year"`
	Type       string    `json:"type" firestore:"type"` // np. notes, question_paper, syllabus
	FileURL    string    `json:"file_url" firestore:"file_url"`
	FilePath   string    `json:"file_path" firestore:"file_path"` // Ścieżka obiektu w buckecie
	FileSize   int64     `json:"file_size" firestore:"file_size"`
	UploadedBy string    `json:"uploaded_by" firestore:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" firestore:"created_at"`
}
