// Package service contains the application-specific use cases and business
// logic for books, listings and book requests. It orchestrates interactions
// between domain objects and repositories (defined in internal/store) to
// fulfill application features.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define the operations available to the HTTP layer
//   - Each service focuses on one resource (books, listings, requests)
//
// 2. Use Case Implementations:
//   - Apply transactional boundaries when an operation spans several stores,
//     for example creating a book, a listing and its images together
//   - Lock rows with GetForUpdate and check ownership before mutating them
//   - Enrich rows with joined data using one batched query per relation
//
// 3. Error Handling:
//   - Return domain and store sentinels unchanged so the API layer can map them
//   - Wrap unexpected failures in ServiceError
//
// Identity and token handling live in the identity and auth subpackages.
package service
