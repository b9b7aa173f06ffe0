// Package integration contains the storefront sync bounded context.
//
// Key concepts:
//   - CommercePlatform: port for the remote storefront (catalog batches, orders, customers)
//   - RemoteOrder: value object for an order as the storefront reports it
//   - SyncLogEntry: append-only ledger of sync runs, used to scope incremental passes
//   - SyncSettings: typed snapshot of the toggles that gate which fields are pushed
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
