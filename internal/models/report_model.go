package models

import "time"

// Report is a user's complaint about a lesson.
type Report struct {
	ID            string    `json:"id" firestore:"-"`
	LessonID      string    `json:"lessonId" firestore:"lessonId"`
	Reason        string    `json:"reason" firestore:"reason"`
	ReporterEmail string    `json:"reporterEmail" firestore:"reporterEmail"`
	ReporterName  string    `json:"reporterName" firestore:"reporterName"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}

// ReportedLesson is the moderation queue projection of a lesson.
type ReportedLesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	AuthorEmail string `json:"authorEmail"`
	ReportCount int    `json:"reportCount"`
}

// Contributor is one row of the top contributors ranking.
type Contributor struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Photo        string `json:"photo,omitempty"`
	TotalLessons int    `json:"totalLessons"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalUsers         int           `json:"totalUsers"`
	TotalPublicLessons int           `json:"totalPublicLessons"`
	ReportedLessons    int           `json:"reportedLessons"`
	TodayLessons       int           `json:"todayLessons"`
	TopContributors    []Contributor `json:"topContributors"`
}
