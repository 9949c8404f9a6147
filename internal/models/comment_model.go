package models

import "time"

// AnonymousName is shown when the author of a comment or report has no display name.
const AnonymousName = "Anonymous"

// Comment is an immutable remark on a lesson. The author's name and picture are
// snapshotted at post time.
type Comment struct {
	ID        string    `json:"id" firestore:"-"`
	LessonID  string    `json:"lessonId" firestore:"lessonId"`
	UserEmail string    `json:"userEmail" firestore:"userEmail"`
	UserName  string    `json:"userName" firestore:"userName"`
	UserImg   string    `json:"userImg,omitempty" firestore:"userImg"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
