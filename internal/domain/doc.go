// Package domain contains the core entities and value objects for herald.
//
// This package has no dependencies on infrastructure concerns (HTTP, file
// system, logging) and contains only the data shapes the dispatch engine
// passes between its components.
//
// # Entities
//
//   - [Profile]: Named sender identity, access token and template rotation
//   - [Recipient]: One row of the recipient source
//   - [Item]: A recipient paired with the template it will receive
//   - [Outcome]: The terminal result of one send attempt
//   - [Summary]: Aggregate counts for a whole run
package domain
