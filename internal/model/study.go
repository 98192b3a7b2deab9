package model

// StudySession describes a launched chat session.  Only SessionID and
// Subject are persisted (as the sessionId and userCourse keys); the rest is
// derived when the deep link is built.
type StudySession struct {
	SessionID string `json:"sessionId"`
	UserName  string `json:"userName"`
	Subject   string `json:"subject"`
	Greeting  string `json:"greeting"`
	Link      string `json:"link"`
}
