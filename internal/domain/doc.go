// Package domain contains the core entities of the elective service: grade
// records, courses, seat capacities, enrollments and usage log entries.
// It has no knowledge of storage or transport.
package domain
