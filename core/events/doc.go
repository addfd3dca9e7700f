// Package events defines the scheduler related events emitted on the event bus.
//
// Available event types:
//   - RequestEvent: demand request lifecycle change
//   - MaintenanceEvent: maintenance job state change
//   - PassEvent: summary of one completed scheduling pass
package events
