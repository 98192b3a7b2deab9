package repository

// Keys persisted in every browser scope.
const (
	KeyRegisteredUsers = "registeredUsers"
	KeySession         = "session"
	KeyUserCourse      = "userCourse"
	KeySessionID       = "sessionId"
)
