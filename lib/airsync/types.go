// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package airsync

// Page indices of the ActiveSync code pages this package declares.
const (
	PageAirSync         = 0
	PageFolderHierarchy = 7
	PagePing            = 13
)

// Ping is the Ping command body: the client parks a long-lived
// request naming the folders it watches, the server answers with a
// status when one of them changes or the heartbeat expires.
type Ping struct {
	Status            string
	HeartbeatInterval string
	Folders           *PingFolders
	MaxFolders        string
}

// PingFolders wraps the watched-folder list.
type PingFolders struct {
	Folder []*PingFolder
}

// PingFolder names one watched folder and its item class.
type PingFolder struct {
	ID    string
	Class string
}

// FolderSync is the FolderSync command body: sync-key driven folder
// hierarchy reconciliation.
type FolderSync struct {
	// SyncKey is the hierarchy state token; "0" requests the full
	// hierarchy.
	SyncKey string
	Status  string
	Changes *FolderChanges
}

// FolderChanges carries the server's hierarchy delta.
type FolderChanges struct {
	Count  string
	Add    []*FolderAdd
	Update []*FolderUpdate
	Delete []*FolderDelete
}

// FolderAdd announces a folder new to the client.
type FolderAdd struct {
	ServerID    string
	ParentID    string
	DisplayName string
	Type        string
}

// FolderUpdate announces a moved or renamed folder.
type FolderUpdate struct {
	ServerID    string
	ParentID    string
	DisplayName string
	Type        string
}

// FolderDelete announces a removed folder.
type FolderDelete struct {
	ServerID string
}

// Sync is the Sync command body: per-collection item synchronization.
type Sync struct {
	Collections *SyncCollections
	Status      string
}

// SyncCollections wraps the per-folder collection list.
type SyncCollections struct {
	Collection []*SyncCollection
}

// SyncCollection is one folder's sync state and command batch.
type SyncCollection struct {
	Class        string
	SyncKey      string
	CollectionID string
	Status       string
	GetChanges   bool
	WindowSize   int
	Commands     *SyncCommands
}

// SyncCommands carries the item-level commands of one collection.
type SyncCommands struct {
	Add    []*SyncAdd
	Delete []*SyncDelete
}

// SyncAdd adds one item. ApplicationData holds the item body: a
// string for plain payloads, raw bytes when the payload is itself a
// WBXML document.
type SyncAdd struct {
	ClientID        string
	ServerID        string
	ApplicationData any
}

// SyncDelete removes one item by server id.
type SyncDelete struct {
	ServerID string
}
