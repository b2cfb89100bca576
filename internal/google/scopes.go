package google

// DefaultScopes covers every API the assistant calls.
//
// drive.file only exposes files the assistant created itself, which is all
// listDriveDocuments needs.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}
