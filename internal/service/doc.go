// Package service contains the application use cases. It orchestrates the
// stores (defined in internal/store), the recommendation engine (in
// internal/recommend) and the audit recorder to fulfill the features exposed
// by the API.
//
// Key components:
//
// 1. EnrollmentService:
//   - Runs the capacity-bounded enrollment transaction with retries
//   - Reads and writes course capacities and occupancy
//   - Performs administrative deletes
//
// 2. RecommendationService:
//   - Loads the grade snapshot and computes a fresh similarity model per session
//   - Derives the exclusion set from current enrollments
//   - Scores recommendations against actual enrollments
//
// 3. ImportService:
//   - Loads grade records and catalog entries in a single transaction
//
// Services receive their dependencies through constructor injection and never
// depend on a specific store implementation.
package service
