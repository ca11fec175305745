package fileinfo

// SameMimeType reports whether every file in the list shares the same
// MIME type. Returns true for an empty or single-element list.
func SameMimeType(files []*FileInfo) bool {
	if len(files) < 2 {
		return true
	}
	want := files[0].Mime()
	for _, f := range files[1:] {
		if f.Mime() != want {
			return false
		}
	}
	return true
}

// SameFilesystem reports whether every file in the list resides on the
// same filesystem: same device id for native files, same interned
// filesystem-id string otherwise. Mixing native and non-native files in
// the same list is treated as "different filesystems".
func SameFilesystem(files []*FileInfo) bool {
	if len(files) < 2 {
		return true
	}
	first := files[0]
	for _, f := range files[1:] {
		if f.fromNative != first.fromNative {
			return false
		}
		if first.fromNative {
			if f.devOrFsID.dev != first.devOrFsID.dev {
				return false
			}
		} else if f.devOrFsID.fsID != first.devOrFsID.fsID {
			return false
		}
	}
	return true
}
