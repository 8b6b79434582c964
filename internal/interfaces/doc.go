// Package interfaces lists the seams between the diary packages.
//
// Interfaces are declared by the package that consumes them and satisfied
// by concrete types elsewhere. checks.go pins each pairing at compile time.
//
// # Persistence
//
//   - persistence.Slots: named byte slots holding store snapshots
//     (SettingsSlots over the settings table, MemorySlots for tests)
//   - persistence.ValueStore: string key/value access, implemented by
//     database.Database
//   - syncer.Saver: writes a store snapshot back to its mode slot,
//     implemented by persistence.Adapter
//
// # Remote
//
//   - diary.Remote: the write-through calls made in server mode
//   - syncer.Remote: the reads and pushes of a sync pass
//
// Both are implemented by remote.Client. Tests substitute an httptest
// server running server.Server, the reference remote.
//
// # HTTP API
//
// The controllers in internal/http depend on narrow interfaces from
// stores.go rather than on diary.Service directly:
//
//   - EntryService, TagService, ModeService, DatabaseService: diary.Service
//   - SyncRunner: scheduler.SyncScheduler
//   - SyncSettings, ModeSettings: settingsstore.SettingsStore
//   - TaskQueue: tasks.Client
//
// # Background sync
//
//   - scheduler.Syncer: one unrecorded sync pass, implemented by diary.Service
//   - tasks.SyncRunner: one recorded pass, implemented by
//     scheduler.SyncScheduler so queued and scheduled passes share the
//     same overlap guard and status bookkeeping
package interfaces
