// Package ports defines the interfaces that connect the dispatch engine to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Ledger]: Durable record of recipients already messaged
//   - [MessageSender]: Delivers one template message to the provider
//   - [ProfileRepository]: Loads and stores sender profiles
//   - [RecipientSource]: Reads the recipient list
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them.
package ports
