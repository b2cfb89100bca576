// Package drive lists the Google Docs the assistant created.
//
// The assistant holds only the drive.file scope, so Drive returns just the
// files this application created or the user opened with it.
package drive
