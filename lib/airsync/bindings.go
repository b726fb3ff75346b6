// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package airsync

import (
	_ "embed"
	"sync"

	"github.com/bureau-foundation/wbxml/lib/schema"
)

//go:embed pages.yaml
var pagesYAML []byte

// Registry returns the sealed ActiveSync schema registry. It is
// built once and shared; the result is immutable and safe for
// concurrent use.
var Registry = sync.OnceValue(buildRegistry)

func buildRegistry() *schema.Registry {
	r := schema.NewRegistry()
	if err := r.AddPages(pagesYAML); err != nil {
		panic("airsync: invalid embedded code pages: " + err.Error())
	}

	schema.Bind[Ping](r, "Ping", PagePing, 0x05,
		schema.String("Status", 0x07,
			func(p *Ping) *string { return &p.Status }),
		schema.String("HeartbeatInterval", 0x08,
			func(p *Ping) *string { return &p.HeartbeatInterval }),
		schema.Object[Ping, PingFolders]("Folders", 0x09,
			func(p *Ping) **PingFolders { return &p.Folders }),
		schema.String("MaxFolders", 0x0D,
			func(p *Ping) *string { return &p.MaxFolders }),
	)
	schema.Bind[PingFolders](r, "PingFolders", PagePing, 0x09,
		schema.Objects[PingFolders, PingFolder]("Folder", schema.NoToken,
			func(f *PingFolders) *[]*PingFolder { return &f.Folder }),
	)
	schema.Bind[PingFolder](r, "PingFolder", PagePing, 0x0A,
		schema.String("Id", 0x0B,
			func(f *PingFolder) *string { return &f.ID }),
		schema.String("Class", 0x0C,
			func(f *PingFolder) *string { return &f.Class }),
	)

	schema.Bind[FolderSync](r, "FolderSync", PageFolderHierarchy, 0x16,
		schema.String("SyncKey", 0x12,
			func(f *FolderSync) *string { return &f.SyncKey },
			schema.Required()),
		schema.String("Status", 0x0C,
			func(f *FolderSync) *string { return &f.Status }),
		schema.Object[FolderSync, FolderChanges]("Changes", 0x0E,
			func(f *FolderSync) **FolderChanges { return &f.Changes }),
	)
	schema.Bind[FolderChanges](r, "FolderChanges", PageFolderHierarchy, 0x0E,
		schema.String("Count", 0x17,
			func(c *FolderChanges) *string { return &c.Count }),
		schema.Objects[FolderChanges, FolderAdd]("Add", schema.NoToken,
			func(c *FolderChanges) *[]*FolderAdd { return &c.Add }),
		schema.Objects[FolderChanges, FolderUpdate]("Update", schema.NoToken,
			func(c *FolderChanges) *[]*FolderUpdate { return &c.Update }),
		schema.Objects[FolderChanges, FolderDelete]("Delete", schema.NoToken,
			func(c *FolderChanges) *[]*FolderDelete { return &c.Delete }),
	)
	schema.Bind[FolderAdd](r, "FolderAdd", PageFolderHierarchy, 0x0F,
		schema.String("ServerId", 0x08,
			func(f *FolderAdd) *string { return &f.ServerID }),
		schema.String("ParentId", 0x09,
			func(f *FolderAdd) *string { return &f.ParentID }),
		schema.String("DisplayName", 0x07,
			func(f *FolderAdd) *string { return &f.DisplayName }),
		schema.String("Type", 0x0A,
			func(f *FolderAdd) *string { return &f.Type }),
	)
	schema.Bind[FolderUpdate](r, "FolderUpdate", PageFolderHierarchy, 0x11,
		schema.String("ServerId", 0x08,
			func(f *FolderUpdate) *string { return &f.ServerID }),
		schema.String("ParentId", 0x09,
			func(f *FolderUpdate) *string { return &f.ParentID }),
		schema.String("DisplayName", 0x07,
			func(f *FolderUpdate) *string { return &f.DisplayName }),
		schema.String("Type", 0x0A,
			func(f *FolderUpdate) *string { return &f.Type }),
	)
	schema.Bind[FolderDelete](r, "FolderDelete", PageFolderHierarchy, 0x10,
		schema.String("ServerId", 0x08,
			func(f *FolderDelete) *string { return &f.ServerID }),
	)

	schema.Bind[Sync](r, "Sync", PageAirSync, 0x05,
		schema.Object[Sync, SyncCollections]("Collections", 0x1C,
			func(s *Sync) **SyncCollections { return &s.Collections }),
		schema.String("Status", 0x0E,
			func(s *Sync) *string { return &s.Status }),
	)
	schema.Bind[SyncCollections](r, "SyncCollections", PageAirSync, 0x1C,
		schema.Objects[SyncCollections, SyncCollection]("Collection", schema.NoToken,
			func(c *SyncCollections) *[]*SyncCollection { return &c.Collection }),
	)
	schema.Bind[SyncCollection](r, "SyncCollection", PageAirSync, 0x0F,
		schema.String("Class", 0x10,
			func(c *SyncCollection) *string { return &c.Class }),
		schema.String("SyncKey", 0x0B,
			func(c *SyncCollection) *string { return &c.SyncKey },
			schema.Required()),
		schema.String("CollectionId", 0x12,
			func(c *SyncCollection) *string { return &c.CollectionID }),
		schema.String("Status", 0x0E,
			func(c *SyncCollection) *string { return &c.Status }),
		schema.Bool("GetChanges", 0x13,
			func(c *SyncCollection) *bool { return &c.GetChanges }),
		schema.Int("WindowSize", 0x15,
			func(c *SyncCollection) *int { return &c.WindowSize }),
		schema.Object[SyncCollection, SyncCommands]("Commands", 0x16,
			func(c *SyncCollection) **SyncCommands { return &c.Commands }),
	)
	schema.Bind[SyncCommands](r, "SyncCommands", PageAirSync, 0x16,
		schema.Objects[SyncCommands, SyncAdd]("Add", schema.NoToken,
			func(c *SyncCommands) *[]*SyncAdd { return &c.Add }),
		schema.Objects[SyncCommands, SyncDelete]("Delete", schema.NoToken,
			func(c *SyncCommands) *[]*SyncDelete { return &c.Delete }),
	)
	schema.Bind[SyncAdd](r, "SyncAdd", PageAirSync, 0x07,
		schema.String("ClientId", 0x0C,
			func(a *SyncAdd) *string { return &a.ClientID }),
		schema.String("ServerId", 0x0D,
			func(a *SyncAdd) *string { return &a.ServerID }),
		schema.Any[SyncAdd]("ApplicationData", 0x1D,
			func(a *SyncAdd) *any { return &a.ApplicationData }),
	)
	schema.Bind[SyncDelete](r, "SyncDelete", PageAirSync, 0x09,
		schema.String("ServerId", 0x0D,
			func(d *SyncDelete) *string { return &d.ServerID }),
	)

	if err := r.Seal(); err != nil {
		panic("airsync: schema declarations failed to seal: " + err.Error())
	}
	return r
}
