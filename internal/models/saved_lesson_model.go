package models

import "time"

// SavedLesson is one entry of the per-user favorites index.
// An entry exists exactly when UserEmail is in the lesson's favorite set.
// Title and Image are captured when the favorite is added and are not refreshed on later edits.
type SavedLesson struct {
	ID        string    `json:"id" firestore:"-"`
	LessonID  string    `json:"lessonId" firestore:"lessonId"`
	UserEmail string    `json:"userEmail" firestore:"userEmail"`
	Title     string    `json:"title" firestore:"title"`
	Image     string    `json:"image,omitempty" firestore:"image"`
	SavedAt   time.Time `json:"savedAt" firestore:"savedAt,serverTimestamp"`
}
