// Package vicon is a minimal stand-in for a desktop icon theme lookup
// service. FileInfo only needs a named handle it can compare and hand to a
// renderer; resolving that name to actual pixels is out of scope here.
package vicon

// Icon is a named icon-theme lookup key, e.g. "folder" or "image-x-generic".
type Icon struct {
	name string
}

// Named returns the Icon identified by a well-known icon-theme name.
func Named(name string) Icon {
	return Icon{name: name}
}

// Name returns the icon-theme lookup key.
func (i Icon) Name() string {
	return i.name
}

// IsZero reports whether i was never assigned a name.
func (i Icon) IsZero() bool {
	return i.name == ""
}

var (
	Folder         = Named("folder")
	FolderLocked   = Named("folder-locked")
	FolderHome     = Named("user-home")
	FolderDesktop  = Named("user-desktop")
	FolderDocs     = Named("folder-documents")
	FolderDownload = Named("folder-download")
	FolderMusic    = Named("folder-music")
	FolderPictures = Named("folder-pictures")
	FolderPublic   = Named("folder-publicshare")
	FolderTemplate = Named("folder-templates")
	FolderVideos   = Named("folder-videos")
	FilesystemRoot = Named("drive-harddisk")
	Shortcut       = Named("emblem-symbolic-link")
	Mountable      = Named("drive-removable-media")
	UnknownType    = Named("unknown")
)
