// Package api exposes recommendation sessions, enrollment and the head of
// department's administration over HTTP. Handlers decode and validate
// requests, call the service layer, and translate its errors into status
// codes and safe messages.
package api
